package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseQuantity parses a quantity cell tolerantly. It accepts locale-style
// decimal separators ("1.234,56" and "1,5" as well as "1234.56"); anything
// non-numeric, empty or negative yields the provided default. The second
// return value reports whether the cell parsed cleanly, so callers can
// escalate instead of defaulting when they need to.
//
// A dot with no comma is ambiguous ("1.234" could be a Spanish thousands
// grouping); it is read as a decimal point, since the quantity columns in
// these exports carry fractional amounts far more often than thousands.
func ParseQuantity(cell string, def decimal.Decimal) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return def, false
	}

	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		// Comma present: treat dots as thousand separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return def, false
	}
	if value.IsNegative() {
		return def, false
	}
	return value, true
}

// ParseLeadDays parses an integer day-count cell tolerantly; garbage yields
// zero.
func ParseLeadDays(cell string) (int, bool) {
	value, ok := ParseQuantity(cell, decimal.Zero)
	if !ok {
		return 0, false
	}
	return int(value.IntPart()), true
}

// dateLayouts are tried in order. The warehouse exports mix day-first
// spreadsheet formats with ISO timestamps depending on who produced them.
var dateLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2/1/06",
	"02/01/06",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ParseDate parses a date cell tolerantly, trying the known layouts in
// order. An unparseable cell yields the fallback (typically "now") with
// ok=false rather than an error: a bad date must not abort the run.
func ParseDate(cell string, fallback time.Time) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return fallback, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return fallback, false
}

// cellAt returns the cell at idx or the empty string when the row is short.
// excelize trims trailing empty cells from the rows it returns.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
