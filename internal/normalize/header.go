package normalize

import "strings"

// Canonical field names for the 13 columns of a positions extract. These are
// the keys of the alias table and the vocabulary the rest of the pipeline
// speaks; raw header spellings never leave this package.
const (
	FieldPosition             = "position"
	FieldTopLevelClient       = "top_level_client"
	FieldHoldingAccount       = "holding_account"
	FieldHoldingAccountNumber = "holding_account_number"
	FieldPortfolio            = "portfolio"
	FieldCusip                = "cusip"
	FieldTickerSymbol         = "ticker_symbol"
	FieldAssetClass           = "asset_class"
	FieldSecondLevel          = "second_level"
	FieldThirdLevel           = "third_level"
	FieldADVClassification    = "adv_classification"
	FieldLiquidVsIlliquid     = "liquid_vs_illiquid"
	FieldAdjustedValue        = "adjusted_value"
)

// fieldAliases maps each canonical field to the ordered list of header
// spellings accepted for it: the canonical export header first, then the
// lowercase/legacy variants seen in historical extracts. Resolution walks
// this list in order and stops at the first header cell that matches.
var fieldAliases = map[string][]string{
	FieldPosition:             {"Position", "position"},
	FieldTopLevelClient:       {"Top Level Client", "top level client", "Top Level Legal Entity"},
	FieldHoldingAccount:       {"Holding Account", "holding account"},
	FieldHoldingAccountNumber: {"Holding Account Number", "holding account number", "Account Number"},
	FieldPortfolio:            {"Portfolio", "portfolio"},
	FieldCusip:                {"Cusip", "CUSIP", "cusip"},
	FieldTickerSymbol:         {"Ticker Symbol", "ticker symbol", "Ticker"},
	FieldAssetClass:           {"Asset Class", "asset class"},
	FieldSecondLevel:          {"Second Level", "second level"},
	FieldThirdLevel:           {"Third Level", "third level"},
	FieldADVClassification:    {"ADV Classification", "Adv Classification", "adv classification"},
	FieldLiquidVsIlliquid:     {"Liquid vs Illiquid", "Liquid vs. Illiquid", "liquid vs illiquid"},
	FieldAdjustedValue:        {"Adjusted Value (USD)", "adjusted value (usd)", "Adjusted Value"},
}

// ColumnMap resolves canonical field names to column indexes in one specific
// extract. Absent fields have no entry.
type ColumnMap map[string]int

// ResolveHeaders matches the actual header row of an extract against the
// alias table once; per-row processing then only does index lookups.
func ResolveHeaders(header []string) ColumnMap {
	index := make(map[string]int, len(header))
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if _, seen := index[cell]; !seen {
			index[cell] = i
		}
	}

	cm := make(ColumnMap, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cm[field] = i
				break
			}
		}
	}
	return cm
}

// value returns the trimmed cell for a canonical field, or "" when the field
// is unmapped or the record is short.
func (cm ColumnMap) value(record []string, field string) string {
	i, ok := cm[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
