package models

import "time"

// FinancialPosition is one holding-account-level position, valid for exactly
// one reporting date. All positions for a date are replaced wholesale on each
// (re-)ingestion.
type FinancialPosition struct {
	ID                   int64     `json:"id"`
	Position             string    `json:"position"`
	TopLevelClient       string    `json:"top_level_client"`
	HoldingAccount       string    `json:"holding_account"`
	HoldingAccountNumber string    `json:"holding_account_number"`
	Portfolio            string    `json:"portfolio"`
	Cusip                string    `json:"cusip"`
	TickerSymbol         string    `json:"ticker_symbol"`
	AssetClass           string    `json:"asset_class"`
	SecondLevel          string    `json:"second_level"`
	ThirdLevel           string    `json:"third_level"`
	ADVClassification    string    `json:"adv_classification"`
	LiquidVsIlliquid     string    `json:"liquid_vs_illiquid"`
	AdjustedValue        string    `json:"adjusted_value"` // encoded, see valuecode
	Date                 time.Time `json:"date"`
	UploadDate           time.Time `json:"upload_date"`
}
