package extract

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Layout constants for the fixed extract convention: rows 1-3 are metadata,
// row 4 is the column header row, data starts at row 5.
const (
	MetaRowCount   = 3
	HeaderRowIndex = 3
	DataRowIndex   = 4
)

// ReadWorkbook reads a positions extract into a row/cell grid. Supported
// extensions are .xlsx (first sheet) and .csv. Every cell is returned as text;
// numeric and date interpretation happens downstream in the normalizer.
func ReadWorkbook(r io.Reader, ext string) ([][]string, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx extract: %w", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported extract type %q (want .xlsx or .csv)", ext)
	}
}

// readCSV parses line by line instead of handing the whole stream to
// encoding/csv: csv.Reader skips fully blank lines, and in the fixed layout a
// blank metadata row is still a row. Dropping it would shift the header and
// data rows up by one.
func readCSV(r io.Reader) ([][]string, error) {
	var rows [][]string
	var pending string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if pending == "" && line == "" {
			rows = append(rows, []string{})
			continue
		}
		if pending != "" {
			// Continuation of a quoted field that spans lines.
			pending += "\n" + line
		} else {
			pending = line
		}
		record, err := parseCSVRecord(pending)
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrQuote) {
				continue
			}
			return nil, fmt.Errorf("failed to read csv extract line %d: %w", lineNo, err)
		}
		rows = append(rows, record)
		pending = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read csv extract: %w", err)
	}
	if pending != "" {
		return nil, fmt.Errorf("failed to read csv extract: unterminated quoted field at line %d", lineNo)
	}
	// Trailing blank lines are padding, not rows; xlsx reads end at the last
	// populated row too.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func parseCSVRecord(raw string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1 // metadata rows are ragged
	return reader.Read()
}
