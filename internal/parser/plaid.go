package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/feed"
)

// FeedNormalizeParams carries the ownership context for normalizing a batch
// of aggregator transactions into one local account.
type FeedNormalizeParams struct {
	UserID        string
	AccountID     string
	FeedAccountID string // the aggregator's id for the remote account
	Source        string // defaults to "Plaid"
}

// NormalizeFeedTransactions converts settled aggregator transactions into
// the common normalized shape.
//
// Pending transactions are excluded outright: a pending row may change
// amount or vanish before settling, and importing it would double-count the
// posted version. Rows with no resolvable date, empty description, or a
// non-finite amount are skipped.
//
// The fingerprint's source component is "{source}:{transaction_id}" when the
// feed supplies a stable per-transaction id, falling back to
// "{source}:{feed_account_id}". Stable ids stay trivially re-importable;
// id-less rows still cannot collide across unrelated remote accounts.
func NormalizeFeedTransactions(params FeedNormalizeParams, transactions []feed.Transaction) []domain.NormalizedTransaction {
	source := params.Source
	if source == "" {
		source = "Plaid"
	}

	var out []domain.NormalizedTransaction

	for _, tx := range transactions {
		if tx.Pending {
			continue
		}

		date := isoDate(tx.Date)
		if date == "" {
			date = isoDate(tx.AuthorizedDate)
		}

		description := strings.TrimSpace(tx.Name)
		if description == "" {
			description = strings.TrimSpace(tx.MerchantName)
		}

		amount := tx.Amount
		if date == "" || description == "" || math.IsNaN(amount) || math.IsInf(amount, 0) {
			continue
		}

		descriptionUpper := strings.ToUpper(description)

		fingerprintSource := fmt.Sprintf("%s:%s", source, params.FeedAccountID)
		if tx.TransactionID != "" {
			fingerprintSource = fmt.Sprintf("%s:%s", source, tx.TransactionID)
		}

		out = append(out, domain.NormalizedTransaction{
			UserID:      params.UserID,
			AccountID:   params.AccountID,
			Date:        date,
			Description: descriptionUpper,
			Amount:      amount,
			Source:      source,
			Merchant:    strings.TrimSpace(tx.MerchantName),
			Raw:         tx.AsMap(),
			Fingerprint: fingerprintFor(params.UserID, params.AccountID, fingerprintSource, date, amount, descriptionUpper),
		})
	}

	return out
}
