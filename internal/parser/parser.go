// Package parser turns raw statement input into normalized transactions.
//
// Every parser produces the same domain.NormalizedTransaction shape so the
// persistence sink does not care where a row came from. Statement parsers
// are a closed set of tagged variants resolved through ForFileType; adding a
// format means adding a variant here, not branching on strings at call sites.
package parser

import (
	"context"

	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/fingerprint"
)

// Meta carries the ownership context a statement parser stamps onto every
// transaction it emits.
type Meta struct {
	UserID    string
	AccountID string
	Source    string
}

// StatementParser extracts normalized transactions from raw file bytes.
type StatementParser interface {
	Parse(ctx context.Context, data []byte, meta Meta) ([]domain.NormalizedTransaction, error)
}

// statementParsers is the closed set of supported file types.
var statementParsers = map[domain.FileType]StatementParser{
	domain.FileTypeAmex: &AmexParser{},
}

// ForFileType resolves the parser for a file-type tag. The second return is
// false for unrecognized tags; callers treat that as a fatal job error.
func ForFileType(ft domain.FileType) (StatementParser, bool) {
	p, ok := statementParsers[ft]
	return p, ok
}

// fingerprintFor funnels every parser through the same amount
// canonicalization before hashing.
func fingerprintFor(userID, accountID, source, date string, amount float64, description string) string {
	return fingerprint.Transaction(userID, accountID, source, date, CanonicalAmount(amount), description)
}

// SourceLabel returns the transaction source label recorded for a file type.
func SourceLabel(ft domain.FileType) string {
	switch ft {
	case domain.FileTypeAmex:
		return "Amex"
	default:
		return string(ft)
	}
}
