package parser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finflowhq/finflow/internal/fingerprint"
)

// buildStatement produces an xlsx with the standard export layout: 11
// preamble lines, headers on row 12, data from row 13.
func buildStatement(t *testing.T, header []interface{}, dataRows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for r := 1; r <= 11; r++ {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("Statement preamble line %d", r)))
	}
	require.NoError(t, f.SetSheetRow(sheet, "A12", &header))
	for i := range dataRows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", 13+i), &dataRows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func amexHeader() []interface{} {
	return []interface{}{"Date", "Description", "Amount", "Merchant", "Exchange Rate"}
}

func TestAmexParse(t *testing.T) {
	data := buildStatement(t, amexHeader(), [][]interface{}{
		{"2024-01-05", "Coffee Shop", "4.50", "Blue Bottle", "0.85"},
		{float64(45300), "Grocery Store", "123.45", "", ""},
	})

	p := &AmexParser{}
	rows, err := p.Parse(context.Background(), data, Meta{
		UserID:    "user-1",
		AccountID: "acct-1",
		Source:    "Amex",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, "acct-1", first.AccountID)
	assert.Equal(t, "2024-01-05", first.Date)
	assert.Equal(t, "COFFEE SHOP", first.Description)
	assert.Equal(t, 4.5, first.Amount)
	assert.Equal(t, "Amex", first.Source)
	assert.Equal(t, "Blue Bottle", first.Merchant)

	// Original cell values survive on the raw map under canonical keys,
	// including the exchange-rate rename.
	assert.Equal(t, "Coffee Shop", first.Raw.String("description"))
	assert.Equal(t, "0.85", first.Raw.String("exc_rate"))

	// The fingerprint input uses the canonical amount: "4.50" hashes as "4.5".
	want := fingerprint.Transaction("user-1", "acct-1", "Amex", "2024-01-05", "4.5", "COFFEE SHOP")
	assert.Equal(t, want, first.Fingerprint)

	// Serial 45300 is a native spreadsheet date cell.
	second := rows[1]
	assert.Equal(t, "2024-01-09", second.Date)
	assert.Equal(t, "GROCERY STORE", second.Description)
	assert.Equal(t, 123.45, second.Amount)
}

func TestAmexParseSkipsUnusableRows(t *testing.T) {
	data := buildStatement(t, amexHeader(), [][]interface{}{
		{"", "No Date Here", "10.00", "", ""},
		{"2024-01-07", "", "10.00", "", ""},
		{"2024-01-08", "Bad Amount", "n/a", "", ""},
		{"not a date", "Garbage Date", "10.00", "", ""},
		{"2024-01-09", "The Only Valid Row", "20.00", "", ""},
	})

	p := &AmexParser{}
	rows, err := p.Parse(context.Background(), data, Meta{UserID: "u", AccountID: "a", Source: "Amex"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "THE ONLY VALID ROW", rows[0].Description)
	assert.Equal(t, 20.0, rows[0].Amount)
}

func TestAmexParseTooShort(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "just a title"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p := &AmexParser{}
	rows, err := p.Parse(context.Background(), buf.Bytes(), Meta{UserID: "u", AccountID: "a", Source: "Amex"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAmexParseInvalidFile(t *testing.T) {
	p := &AmexParser{}
	_, err := p.Parse(context.Background(), []byte("definitely not a spreadsheet"), Meta{})
	require.Error(t, err)
}

func TestAmexParseDeterministic(t *testing.T) {
	data := buildStatement(t, amexHeader(), [][]interface{}{
		{"2024-02-01", "Rent", "1500.00", "", ""},
	})

	p := &AmexParser{}
	meta := Meta{UserID: "u", AccountID: "a", Source: "Amex"}

	first, err := p.Parse(context.Background(), data, meta)
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), data, meta)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Fingerprint, second[0].Fingerprint)
}

func TestForFileType(t *testing.T) {
	p, ok := ForFileType("amex")
	assert.True(t, ok)
	assert.NotNil(t, p)

	_, ok = ForFileType("csv")
	assert.False(t, ok)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "Amex", SourceLabel("amex"))
	assert.Equal(t, "somethingelse", SourceLabel("somethingelse"))
}
