package extract

import (
	"testing"
	"time"
)

var runDate = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func metaRows(viewName, dateRange string) [][]string {
	return [][]string{
		{viewName, ""},
		{"", dateRange},
		{""},
	}
}

func TestParseMetadata_NumericUSRange(t *testing.T) {
	meta := parseMetadataAt(metaRows("Positions by Client", "01-01-2025 to 03-31-2025"), runDate)
	if meta.ViewName != "Positions by Client" {
		t.Errorf("unexpected view name: %q", meta.ViewName)
	}
	want := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected end date %v, got %v", want, meta.ReportDate)
	}
}

func TestParseMetadata_ISORange(t *testing.T) {
	meta := parseMetadataAt(metaRows("V", "2025-01-01 to 2025-06-30"), runDate)
	want := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected end date %v, got %v", want, meta.ReportDate)
	}
}

func TestParseMetadata_MonthNameRange(t *testing.T) {
	meta := parseMetadataAt(metaRows("V", "January 1, 2025 to March 31, 2025"), runDate)
	want := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected end date %v, got %v", want, meta.ReportDate)
	}
}

func TestParseMetadata_FirstFormWins(t *testing.T) {
	// A cell that satisfies the US numeric form must not be re-read as ISO.
	meta := parseMetadataAt(metaRows("V", "12-01-2024 to 12-31-2024"), runDate)
	want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected end date %v, got %v", want, meta.ReportDate)
	}
}

func TestParseMetadata_FallbackToRunDate(t *testing.T) {
	cases := []string{
		"",
		"not a date range",
		"Q1 2025",
		"01/01/2025 to 03/31/2025", // slashes are not a supported form
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		meta := parseMetadataAt(metaRows("V", c), runDate)
		if !meta.ReportDate.Equal(want) {
			t.Errorf("range %q: expected run-date fallback %v, got %v", c, want, meta.ReportDate)
		}
	}
}

func TestParseMetadata_InvalidEndDateFallsBack(t *testing.T) {
	// Matches the numeric pattern but the end date is not a real date.
	meta := parseMetadataAt(metaRows("V", "01-01-2025 to 13-45-2025"), runDate)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected run-date fallback %v, got %v", want, meta.ReportDate)
	}
}

func TestParseMetadata_DefaultViewName(t *testing.T) {
	meta := parseMetadataAt([][]string{{"", "  "}, {"", "2025-01-01 to 2025-01-31"}}, runDate)
	if meta.ViewName != DefaultViewName {
		t.Errorf("expected default view name, got %q", meta.ViewName)
	}
}

func TestParseMetadata_EmptyInput(t *testing.T) {
	meta := parseMetadataAt(nil, runDate)
	if meta.ViewName != DefaultViewName {
		t.Errorf("expected default view name, got %q", meta.ViewName)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !meta.ReportDate.Equal(want) {
		t.Errorf("expected run-date fallback %v, got %v", want, meta.ReportDate)
	}
}
