// Package fingerprint computes the stable dedup key for a transaction.
//
// The digest covers the business-identity fields only (owner, account,
// source, date, amount, description), not the full raw row. Two independent
// exports covering overlapping date ranges therefore converge on the same
// key, which is what makes the upsert-based dedup idempotent. The digest is
// sensitive to amount formatting, so callers must canonicalize the amount
// string consistently before hashing (see parser.CanonicalAmount).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const delimiter = "|"

// Transaction returns the hex SHA-256 digest of the canonical concatenation
// of a transaction's identity fields.
//
// date must be an ISO YYYY-MM-DD string and amount a canonical decimal
// string. The description is expected to arrive trimmed and upper-cased;
// both are normalized again here so a sloppy caller cannot split identities.
func Transaction(userID, accountID, source, date, amount, description string) string {
	canonical := strings.Join([]string{
		userID,
		accountID,
		strings.TrimSpace(source),
		strings.TrimSpace(date),
		strings.TrimSpace(amount),
		strings.ToUpper(strings.TrimSpace(description)),
	}, delimiter)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
