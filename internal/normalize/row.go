package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is the canonical form of one extract line, prior to value encoding.
// Identity fields are guaranteed non-empty; every other string carries its
// documented default when the source cell was missing or blank.
type Row struct {
	Position             string
	TopLevelClient       string
	HoldingAccount       string
	HoldingAccountNumber string
	Portfolio            string
	Cusip                string
	TickerSymbol         string
	AssetClass           string
	SecondLevel          string
	ThirdLevel           string
	ADVClassification    string
	LiquidVsIlliquid     string
	AdjustedValue        decimal.Decimal
}

// Per-field defaults for missing descriptive values.
const (
	DefaultPlaceholder = "-"
	DefaultAssetClass  = "Other"
	DefaultLiquidity   = "Liquid"
)

// NormalizeRow maps one raw record onto the canonical Row. It returns an
// error only when an identity field (position, top level client, holding
// account) cannot be resolved; those three cannot be synthesized. A
// malformed monetary cell never fails the row, it degrades to zero.
func NormalizeRow(cm ColumnMap, record []string) (*Row, error) {
	position := cm.value(record, FieldPosition)
	client := cm.value(record, FieldTopLevelClient)
	account := cm.value(record, FieldHoldingAccount)

	switch {
	case position == "":
		return nil, fmt.Errorf("missing required field %q", FieldPosition)
	case client == "":
		return nil, fmt.Errorf("missing required field %q", FieldTopLevelClient)
	case account == "":
		return nil, fmt.Errorf("missing required field %q", FieldHoldingAccount)
	}

	return &Row{
		Position:             position,
		TopLevelClient:       client,
		HoldingAccount:       account,
		HoldingAccountNumber: defaulted(cm.value(record, FieldHoldingAccountNumber), DefaultPlaceholder),
		Portfolio:            defaulted(cm.value(record, FieldPortfolio), DefaultPlaceholder),
		Cusip:                cm.value(record, FieldCusip),
		TickerSymbol:         cm.value(record, FieldTickerSymbol),
		AssetClass:           defaulted(cm.value(record, FieldAssetClass), DefaultAssetClass),
		SecondLevel:          cm.value(record, FieldSecondLevel),
		ThirdLevel:           cm.value(record, FieldThirdLevel),
		ADVClassification:    cm.value(record, FieldADVClassification),
		LiquidVsIlliquid:     defaulted(cm.value(record, FieldLiquidVsIlliquid), DefaultLiquidity),
		AdjustedValue:        CleanNumeric(cm.value(record, FieldAdjustedValue)),
	}, nil
}

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// CleanNumeric parses monetary text into a decimal. Currency symbols,
// thousands separators and surrounding whitespace are stripped first.
// Anything still unparsable becomes zero rather than an error.
func CleanNumeric(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
