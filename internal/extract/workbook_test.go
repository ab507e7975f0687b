package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadWorkbook_CSV(t *testing.T) {
	csv := "Positions by Account\n" +
		",01-01-2025 to 03-31-2025\n" +
		"\n" +
		"Position,Top Level Client,Holding Account\n" +
		"AAPL,Acme Trust,Acme-1\n"

	rows, err := ReadWorkbook(strings.NewReader(csv), ".csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[HeaderRowIndex][0] != "Position" {
		t.Errorf("unexpected header row: %v", rows[HeaderRowIndex])
	}
	if rows[DataRowIndex][1] != "Acme Trust" {
		t.Errorf("unexpected data row: %v", rows[DataRowIndex])
	}
}

func TestReadWorkbook_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Positions by Account",
		"B2": "2025-01-01 to 2025-03-31",
		"A4": "Position", "B4": "Top Level Client", "C4": "Holding Account",
		"A5": "AAPL", "B5": "Acme Trust", "C5": "Acme-1",
	}
	for ref, v := range cells {
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			t.Fatalf("failed to set cell %s: %v", ref, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	rows, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), ".xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) < DataRowIndex+1 {
		t.Fatalf("expected at least %d rows, got %d", DataRowIndex+1, len(rows))
	}
	if rows[0][0] != "Positions by Account" {
		t.Errorf("unexpected view cell: %v", rows[0])
	}
	if rows[DataRowIndex][0] != "AAPL" {
		t.Errorf("unexpected data row: %v", rows[DataRowIndex])
	}
}

func TestReadWorkbook_UnsupportedExtension(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("x"), ".pdf")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestReadWorkbook_CSVKeepsBlankRows(t *testing.T) {
	// A blank metadata row is still a row of the fixed layout. Dropping it
	// would shift the header into the metadata block and the first data row
	// into the header slot.
	csv := "Positions by Account\n" +
		"\n" +
		"\n" +
		"Position,Top Level Client,Holding Account\n" +
		"AAPL,Acme Trust,Acme-1\n" +
		"MSFT,Acme Trust,Acme-1\n"

	rows, err := ReadWorkbook(strings.NewReader(csv), ".csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	for i := 1; i <= 2; i++ {
		if len(rows[i]) != 0 {
			t.Errorf("expected row %d to be empty, got %v", i+1, rows[i])
		}
	}
	if rows[HeaderRowIndex][0] != "Position" {
		t.Errorf("unexpected header row: %v", rows[HeaderRowIndex])
	}
	if rows[DataRowIndex][0] != "AAPL" {
		t.Errorf("unexpected first data row: %v", rows[DataRowIndex])
	}
}

func TestReadWorkbook_CSVDropsTrailingBlankLines(t *testing.T) {
	csv := "View\n,range\n\nPosition,Client\nAAPL,Acme Trust\n\n\n"
	rows, err := ReadWorkbook(strings.NewReader(csv), ".csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected trailing blanks dropped, got %d rows", len(rows))
	}
}

func TestReadWorkbook_CSVQuotedFieldSpansLines(t *testing.T) {
	csv := "View\n,range\n\nPosition,Client\n\"multi\nline\",Acme Trust\n"
	rows, err := ReadWorkbook(strings.NewReader(csv), ".csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[DataRowIndex][0] != "multi\nline" {
		t.Errorf("unexpected quoted field: %q", rows[DataRowIndex][0])
	}
}

func TestReadWorkbook_CSVUnterminatedQuote(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("View\n\"never closed\n"), ".csv")
	if err == nil {
		t.Fatal("expected error for unterminated quoted field")
	}
}

func TestReadWorkbook_RaggedCSVRows(t *testing.T) {
	csv := "View\n,range\nPosition,Client,Account,Extra\na,b\n"
	rows, err := ReadWorkbook(strings.NewReader(csv), ".csv")
	if err != nil {
		t.Fatalf("unexpected error for ragged rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
}
