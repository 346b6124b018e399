package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finflowhq/finflow/internal/domain"
)

// TransactionRepository is the persistence sink for normalized transactions.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// UpsertBatch writes a batch of normalized transactions keyed by
// (user_id, account_id, fingerprint). A conflict on that key overwrites the
// existing row (last writer wins); callers never pre-check existence. This
// is what makes re-running the same ingestion job safe.
func (r *TransactionRepository) UpsertBatch(ctx context.Context, rows []domain.NormalizedTransaction) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]domain.Transaction, 0, len(rows))
	for _, n := range rows {
		records = append(records, domain.Transaction{
			ID:          uuid.NewString(),
			UserID:      n.UserID,
			AccountID:   n.AccountID,
			Date:        n.Date,
			Description: n.Description,
			Amount:      n.Amount,
			Source:      n.Source,
			Merchant:    n.Merchant,
			Raw:         n.Raw,
			Fingerprint: n.Fingerprint,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "account_id"}, {Name: "fingerprint"},
		},
		UpdateAll: true,
	}).Create(&records).Error
}

// ListByAccount retrieves an account's transactions, newest date first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, userID, accountID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var txns []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Order("date DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// CountByAccount returns the number of stored transactions for an account.
func (r *TransactionRepository) CountByAccount(ctx context.Context, userID, accountID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Count(&count).Error
	return count, err
}
