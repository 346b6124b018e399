package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap is a custom type for storing free-form key-value payloads as JSON
// in the database (job payloads, raw statement rows kept for audit).
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// String returns the string payload value for key, or "" when absent.
func (m JSONMap) String(key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// NormalizedTransaction is the common in-memory shape every parser produces.
// It is never persisted as its own entity; the persistence sink turns it
// into a Transaction row keyed by (user, account, fingerprint).
//
// Amount sign convention: positive = outflow/expense, negative = inflow.
type NormalizedTransaction struct {
	UserID      string
	AccountID   string
	Date        string // YYYY-MM-DD
	Description string // trimmed, upper-cased
	Amount      float64
	Source      string
	Merchant    string
	Raw         JSONMap
	Fingerprint string
}

// Transaction is a deduplicated financial transaction. The unique index on
// (user_id, account_id, fingerprint) is the dedup key: re-ingesting the same
// logical transaction overwrites the existing row instead of duplicating it.
type Transaction struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	UserID      string    `gorm:"type:text;not null;uniqueIndex:idx_txn_identity" json:"user_id"`
	AccountID   string    `gorm:"type:text;not null;uniqueIndex:idx_txn_identity" json:"account_id"`
	Date        string    `gorm:"type:text;not null;index" json:"date"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Source      string    `gorm:"type:text" json:"source"`
	Merchant    string    `gorm:"type:text" json:"merchant,omitempty"`
	Raw         JSONMap   `gorm:"type:text" json:"raw,omitempty"`
	Fingerprint string    `gorm:"type:text;not null;uniqueIndex:idx_txn_identity" json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string {
	return "transactions"
}
