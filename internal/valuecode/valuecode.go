// Package valuecode implements the storage convention for monetary values:
// a fixed literal marker prepended to a two-decimal rendering of the amount.
// It is a reversible tag, not a security control; readers must decode before
// doing arithmetic.
package valuecode

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Marker is the literal prefix identifying an encoded value.
const Marker = "ENCv1:"

// Encode renders a value with exactly two decimal places and prepends the
// marker.
func Encode(d decimal.Decimal) string {
	return Marker + d.StringFixed(2)
}

// Decode strips the marker and re-parses the remainder as a decimal. Values
// without the marker are treated as already-plain decimals, so rows loaded
// before the encoding convention existed still read back correctly.
func Decode(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, Marker)
	return decimal.NewFromString(s)
}

// IsEncoded reports whether a stored value carries the marker.
func IsEncoded(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), Marker)
}
