package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finflowhq/finflow/internal/feed"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/parser"
	"github.com/finflowhq/finflow/internal/repository"
)

// feedLookbackDays is how far back a fresh feed import reaches.
const feedLookbackDays = 365

// FeedClient is the slice of the aggregation API the import flow needs.
type FeedClient interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (string, error)
	GetAccounts(ctx context.Context, accessToken string) ([]feed.Account, error)
	FetchAllTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string) ([]feed.Transaction, error)
}

// FeedImportService pulls a linked account's transaction history from the
// aggregation feed and upserts it into the local account. The upsert key
// makes repeat imports converge instead of duplicating.
type FeedImportService struct {
	client       FeedClient
	transactions *repository.TransactionRepository
	log          *logger.Logger
}

// NewFeedImportService creates a new feed import service.
func NewFeedImportService(client FeedClient, transactions *repository.TransactionRepository, log *logger.Logger) *FeedImportService {
	return &FeedImportService{
		client:       client,
		transactions: transactions,
		log:          log,
	}
}

// FeedImportParams identifies what to import and where to put it.
type FeedImportParams struct {
	UserID        string
	AccountID     string // local account receiving the rows
	PublicToken   string // link-flow token to exchange
	FeedAccountID string // remote account; optional when exactly one is linked
}

// Import runs the full flow: exchange the token, resolve the remote
// account, materialize every page of the last year's transactions, then
// normalize and upsert. Returns the number of rows written.
func (s *FeedImportService) Import(ctx context.Context, params FeedImportParams) (int, error) {
	if params.UserID == "" || params.AccountID == "" || params.PublicToken == "" {
		return 0, fmt.Errorf("feed import requires user, account and public token")
	}

	accessToken, err := s.client.ExchangePublicToken(ctx, params.PublicToken)
	if err != nil {
		return 0, fmt.Errorf("token exchange failed: %w", err)
	}

	accounts, err := s.client.GetAccounts(ctx, accessToken)
	if err != nil {
		return 0, fmt.Errorf("failed to list linked accounts: %w", err)
	}

	feedAccountID, err := resolveFeedAccount(accounts, params.FeedAccountID)
	if err != nil {
		return 0, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -feedLookbackDays)

	remote, err := s.client.FetchAllTransactions(ctx, accessToken,
		[]string{feedAccountID},
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed transactions: %w", err)
	}

	rows := parser.NormalizeFeedTransactions(parser.FeedNormalizeParams{
		UserID:        params.UserID,
		AccountID:     params.AccountID,
		FeedAccountID: feedAccountID,
		Source:        "Plaid",
	}, remote)

	if err := s.transactions.UpsertBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to upsert transactions: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldCount:     len(rows),
		logger.FieldAccountID: params.AccountID,
	}).Info(ctx, "Feed import completed fetched=%d", len(remote))

	return len(rows), nil
}

// resolveFeedAccount picks the remote account to import: an explicit id
// must be among the linked accounts, and without one the link must contain
// exactly a single account.
func resolveFeedAccount(accounts []feed.Account, explicit string) (string, error) {
	if explicit != "" {
		for _, a := range accounts {
			if a.AccountID == explicit {
				return explicit, nil
			}
		}
		return "", fmt.Errorf("selected feed account was not linked")
	}

	if len(accounts) != 1 {
		return "", fmt.Errorf("multiple feed accounts linked, select one to import")
	}
	return accounts[0].AccountID, nil
}
