package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finflowhq/finflow/internal/domain"
)

// amexHeaderRow is the 1-indexed row holding the column headers in an Amex
// xlsx export. The export always places 11 preamble lines above the header;
// this is a format contract with the exporter, not a heuristic. If Amex
// changes the export layout this offset must change with it.
const amexHeaderRow = 12

// AmexParser extracts transactions from an Amex xlsx statement export.
//
// Rows that yield no parseable date, an empty description, or a non-numeric
// amount are skipped silently rather than failing the import: exports
// routinely end in blank trailer rows and summary lines.
type AmexParser struct{}

// Parse implements StatementParser.
func (p *AmexParser) Parse(ctx context.Context, data []byte, meta Meta) ([]domain.NormalizedTransaction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	// Raw cell values so date cells come through as serial numbers instead
	// of locale-formatted display strings.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < amexHeaderRow {
		return nil, nil
	}

	// Column index -> canonical key map from the header row.
	colKeys := make(map[int]string)
	for i, cell := range rows[amexHeaderRow-1] {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if key == "exchange_rate" {
			key = "exc_rate"
		}
		colKeys[i] = key
	}

	var out []domain.NormalizedTransaction

	for _, row := range rows[amexHeaderRow:] {
		if len(row) == 0 {
			continue
		}

		raw := domain.JSONMap{}
		for i, cell := range row {
			key, ok := colKeys[i]
			if !ok || cell == "" {
				continue
			}
			raw[key] = cell
		}

		date := isoDate(raw.String("date"))
		description := strings.TrimSpace(raw.String("description"))
		amount, amountOK := parseAmount(raw.String("amount"))
		merchant := strings.TrimSpace(raw.String("merchant"))

		if date == "" || description == "" || !amountOK {
			continue
		}

		descriptionUpper := strings.ToUpper(description)

		out = append(out, domain.NormalizedTransaction{
			UserID:      meta.UserID,
			AccountID:   meta.AccountID,
			Date:        date,
			Description: descriptionUpper,
			Amount:      amount,
			Source:      meta.Source,
			Merchant:    merchant,
			Raw:         raw,
			Fingerprint: fingerprintFor(meta.UserID, meta.AccountID, meta.Source, date, amount, descriptionUpper),
		})
	}

	return out, nil
}
