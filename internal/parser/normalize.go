package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// textDateLayouts are the free-text date encodings accepted from statement
// exports, tried in order. A closed list keeps accepted encodings auditable:
// the parsed date feeds the dedup fingerprint, so "generous" parsing would
// silently split or merge transaction identities.
var textDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// isoDate converts a raw cell value to YYYY-MM-DD. Spreadsheet cells arrive
// as strings even for native date cells: a numeric value is treated as a
// spreadsheet serial (days since 1899-12-30, the conventional off-by-one
// epoch), anything else goes through the text layouts. Returns "" when the
// value is empty or unparseable.
func isoDate(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return ""
		}
		return t.Format("2006-01-02")
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseAmount converts a raw cell value to a number, tolerating currency
// symbols and thousands separators. The bool is false for empty or
// non-numeric input, which invalidates the row.
func parseAmount(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// CanonicalAmount formats an amount for fingerprinting: fixed notation, no
// grouping, no trailing zeros (4.50 -> "4.5"). Every producer of fingerprint
// input must use this, or identical transactions stop deduplicating.
func CanonicalAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// normalizeHeader canonicalizes a header cell into a raw-map key:
// trimmed, lower-cased, spaces collapsed to underscores.
func normalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(key), "_")
}
