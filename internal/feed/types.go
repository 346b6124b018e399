package feed

import "encoding/json"

// Transaction is one transaction object as served by the aggregation API.
// Pending transactions may still change amount or disappear before settling;
// the normalizer drops them.
type Transaction struct {
	TransactionID   string   `json:"transaction_id"`
	AccountID       string   `json:"account_id"`
	Name            string   `json:"name"`
	MerchantName    string   `json:"merchant_name,omitempty"`
	Amount          float64  `json:"amount"`
	ISOCurrencyCode string   `json:"iso_currency_code,omitempty"`
	Date            string   `json:"date"`
	AuthorizedDate  string   `json:"authorized_date,omitempty"`
	Pending         bool     `json:"pending"`
	Category        []string `json:"category,omitempty"`
	PaymentChannel  string   `json:"payment_channel,omitempty"`
}

// AsMap returns the transaction as a free-form map, preserved on the stored
// row for audit and debugging.
func (t Transaction) AsMap() map[string]interface{} {
	b, err := json.Marshal(t)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// Account is one linked account at the aggregator.
type Account struct {
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name,omitempty"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype,omitempty"`
	Mask         string `json:"mask,omitempty"`
}

type exchangeTokenRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type exchangeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type accountsGetRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type accountsGetResponse struct {
	Accounts []Account `json:"accounts"`
}

type transactionsGetOptions struct {
	AccountIDs []string `json:"account_ids,omitempty"`
	Count      int      `json:"count"`
	Offset     int      `json:"offset"`
}

type transactionsGetRequest struct {
	ClientID    string                 `json:"client_id"`
	Secret      string                 `json:"secret"`
	AccessToken string                 `json:"access_token"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Options     transactionsGetOptions `json:"options"`
}

// TransactionsPage is one page of the paginated transaction fetch.
type TransactionsPage struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

type apiError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
