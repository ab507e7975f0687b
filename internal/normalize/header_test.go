package normalize

import "testing"

func TestResolveHeaders_CanonicalNames(t *testing.T) {
	header := []string{
		"Position", "Top Level Client", "Holding Account", "Holding Account Number",
		"Portfolio", "Cusip", "Ticker Symbol", "Asset Class", "Second Level",
		"Third Level", "ADV Classification", "Liquid vs Illiquid", "Adjusted Value (USD)",
	}
	cm := ResolveHeaders(header)
	if len(cm) != 13 {
		t.Fatalf("expected all 13 fields resolved, got %d: %v", len(cm), cm)
	}
	if cm[FieldPosition] != 0 || cm[FieldAdjustedValue] != 12 {
		t.Errorf("unexpected indexes: position=%d adjusted_value=%d",
			cm[FieldPosition], cm[FieldAdjustedValue])
	}
}

func TestResolveHeaders_LegacyVariants(t *testing.T) {
	header := []string{"position", "top level client", "holding account", "Account Number", "Ticker", "Adjusted Value"}
	cm := ResolveHeaders(header)

	expect := map[string]int{
		FieldPosition:             0,
		FieldTopLevelClient:       1,
		FieldHoldingAccount:       2,
		FieldHoldingAccountNumber: 3,
		FieldTickerSymbol:         4,
		FieldAdjustedValue:        5,
	}
	for field, idx := range expect {
		got, ok := cm[field]
		if !ok {
			t.Errorf("field %s not resolved", field)
			continue
		}
		if got != idx {
			t.Errorf("field %s resolved to column %d, want %d", field, got, idx)
		}
	}
	if _, ok := cm[FieldPortfolio]; ok {
		t.Error("portfolio should be unresolved for this header")
	}
}

func TestResolveHeaders_CanonicalBeatsAlternate(t *testing.T) {
	// When both spellings appear, the canonical one wins regardless of order.
	header := []string{"position", "Position"}
	cm := ResolveHeaders(header)
	if cm[FieldPosition] != 1 {
		t.Errorf("expected canonical header at column 1 to win, got %d", cm[FieldPosition])
	}
}

func TestResolveHeaders_WhitespaceTrimmed(t *testing.T) {
	cm := ResolveHeaders([]string{"  Position  ", " Portfolio"})
	if cm[FieldPosition] != 0 || cm[FieldPortfolio] != 1 {
		t.Errorf("expected trimmed matches, got %v", cm)
	}
}
