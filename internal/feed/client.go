// Package feed is the client for the third-party transaction aggregation
// API (Plaid-compatible wire shape). The pipeline consumes it read-only:
// exchange a public token, resolve linked accounts, and pull the full
// transaction history page by page.
package feed

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 500

// Config holds feed client configuration.
type Config struct {
	BaseURL  string
	ClientID string
	Secret   string
	PageSize int
}

// Client talks to the aggregation API.
type Client struct {
	client   *resty.Client
	clientID string
	secret   string
	pageSize int
}

// NewClient creates a feed client for the configured environment.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Content-Type", "application/json")

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		client:   client,
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		pageSize: pageSize,
	}
}

// ExchangePublicToken trades a link-flow public token for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, error) {
	var out exchangeTokenResponse
	if err := c.post(ctx, "/item/public_token/exchange", exchangeTokenRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}
	return out.AccessToken, nil
}

// GetAccounts lists the accounts linked under an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var out accountsGetResponse
	if err := c.post(ctx, "/accounts/get", accountsGetRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// GetTransactions fetches one page of transactions for the given accounts
// and date range (dates are YYYY-MM-DD).
func (c *Client) GetTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, count, offset int) (*TransactionsPage, error) {
	var out TransactionsPage
	if err := c.post(ctx, "/transactions/get", transactionsGetRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		StartDate:   startDate,
		EndDate:     endDate,
		Options: transactionsGetOptions{
			AccountIDs: accountIDs,
			Count:      count,
			Offset:     offset,
		},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAllTransactions pages through the full result set, looping until
// offset reaches the reported total. The contract here is full
// materialization: the caller normalizes only once every page is in.
func (c *Client) FetchAllTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string) ([]Transaction, error) {
	var all []Transaction
	offset := 0

	for {
		page, err := c.GetTransactions(ctx, accessToken, accountIDs, startDate, endDate, c.pageSize, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Transactions...)
		offset += len(page.Transactions)

		if offset >= page.TotalTransactions || len(page.Transactions) == 0 {
			break
		}
	}

	return all, nil
}

// post issues one API call and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("feed request %s failed: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.ErrorMessage != "" {
			return fmt.Errorf("feed request %s failed: %s (%s)", path, apiErr.ErrorMessage, apiErr.ErrorCode)
		}
		return fmt.Errorf("feed request %s failed: status %d", path, resp.StatusCode())
	}
	return nil
}
