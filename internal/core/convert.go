package core

// convert.go turns CSV and form cells into ledger numbers.
//
// Cells are trimmed and lightly cleaned before parsing:
//   - Excel formula prefixes (="5" or =5) are removed
//   - Currency symbols ($, €, £, ₱) are removed
//
// Parsing goes through shopspring/decimal so prices keep their exact
// decimal value. Exponents are capped at three digits to keep a hostile
// cell from producing an enormous integer when floored.

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex matches integers, decimals and short scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d{1,3})?$`)

const maxNumericCell = 64

var maxStock = decimal.NewFromInt(math.MaxInt32)

// CleanCell removes common CSV artifacts from a cell value.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

// ParseNumber parses a numeric cell. ok is false for empty or malformed
// input.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = CleanCell(s)
	for _, sym := range []string{"$", "€", "£", "₱"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxNumericCell || !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseCount parses a non-negative count and floors any fraction.
// ok is false for empty, malformed, negative or out-of-range input.
func ParseCount(s string) (int, bool) {
	d, ok := ParseNumber(s)
	if !ok || d.IsNegative() {
		return 0, false
	}
	d = d.Floor()
	if d.GreaterThan(maxStock) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// ParsePrice parses an optional price. An empty cell is no price. A
// malformed or negative value is a ValidationError.
func ParsePrice(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, ok := ParseNumber(s)
	if !ok {
		return nil, invalid("price", "price must be a number")
	}
	if d.IsNegative() {
		return nil, invalid("price", "price must be zero or more")
	}
	return &d, nil
}

// HeaderIndex maps normalized column names to their position.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row. Names are
// normalized like item keys; the first occurrence of a repeated name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := NormalizeKey(strings.Trim(CleanCell(h), `"'`))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Cell returns the value of column name in row, or "" when the column or
// cell is absent.
func (h HeaderIndex) Cell(row []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return row[i], true
}
