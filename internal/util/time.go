package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// DayLayout is the wire format for reporting dates.
const DayLayout = "2006-01-02"

// DayOf truncates a timestamp to its calendar date at midnight UTC.
// Reporting dates are calendar dates; time-of-day never participates in
// comparisons or partitioning.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a reporting date.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		log.Debugf("failed to parse day %q: %v", s, err)
		return time.Time{}, err
	}
	return d, nil
}

// FormatDay renders a reporting date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}
