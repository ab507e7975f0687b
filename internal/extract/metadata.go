package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/crestviewcap/positions/internal/util"
	log "github.com/sirupsen/logrus"
)

// DefaultViewName is used when row 1 of the metadata block carries no label.
const DefaultViewName = "Positions by Account"

// Metadata is the report identity extracted from the 3-row header block.
type Metadata struct {
	ViewName   string
	ReportDate time.Time
}

// The reporting period appears in row 2 as a date range in one of three
// literal forms. The end date of the range is the reporting date. Patterns
// are tried in order; first match wins.
var rangePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\d{2}-\d{2}-\d{4}\s+to\s+(\d{2}-\d{2}-\d{4})`), "01-02-2006"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+to\s+(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	{regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, \d{4}\s+to\s+([A-Z][a-z]+ \d{1,2}, \d{4})`), "January 2, 2006"},
}

// ParseMetadata extracts the view name and reporting date from the metadata
// rows of an extract. It is best-effort by contract: malformed metadata never
// aborts ingestion. A missing view name falls back to DefaultViewName and an
// unparsable date range falls back to the current calendar date.
func ParseMetadata(rows [][]string) Metadata {
	return parseMetadataAt(rows, time.Now())
}

func parseMetadataAt(rows [][]string, now time.Time) Metadata {
	meta := Metadata{
		ViewName:   DefaultViewName,
		ReportDate: util.DayOf(now),
	}

	if len(rows) > 0 {
		for _, cell := range rows[0] {
			if v := strings.TrimSpace(cell); v != "" {
				meta.ViewName = v
				break
			}
		}
	}

	if len(rows) > 1 {
		if d, ok := resolveReportDate(rows[1]); ok {
			meta.ReportDate = d
		} else {
			log.Warnf("no reporting date found in metadata row %v, defaulting to %s",
				rows[1], meta.ReportDate.Format("2006-01-02"))
		}
	}

	return meta
}

// resolveReportDate scans the cells of the date-range row for the first
// matching range form and parses its end date.
func resolveReportDate(cells []string) (time.Time, bool) {
	for _, cell := range cells {
		for _, p := range rangePatterns {
			m := p.re.FindStringSubmatch(cell)
			if m == nil {
				continue
			}
			d, err := time.Parse(p.layout, m[1])
			if err != nil {
				log.Warnf("matched date range %q but end date failed to parse: %v", m[0], err)
				continue
			}
			return util.DayOf(d), true
		}
	}
	return time.Time{}, false
}
