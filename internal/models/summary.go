package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryLevel is the aggregation dimension of a summary row
type SummaryLevel string

const (
	SummaryLevelClient    SummaryLevel = "client"
	SummaryLevelPortfolio SummaryLevel = "portfolio"
	SummaryLevelAccount   SummaryLevel = "account"
)

// FirmWideKey is the sentinel level key for the firm-wide rollup row. It is
// stored at level "client" so UIs can offer it alongside real client names.
const FirmWideKey = "All Clients"

// FinancialSummary is one derived rollup row per (level, key, reporting date).
// The full set for a report date is regenerated on every aggregation run.
type FinancialSummary struct {
	ID                 int64           `json:"id"`
	Level              SummaryLevel    `json:"level"`
	LevelKey           string          `json:"level_key"`
	TotalAdjustedValue decimal.Decimal `json:"total_adjusted_value"`
	ReportDate         time.Time       `json:"report_date"`
	UploadDate         time.Time       `json:"upload_date"`
}
