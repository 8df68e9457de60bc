package repositories

import (
	"context"

	"aidtrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface.
// Records are never updated or deleted.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends a transaction
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Omit("Performer").Create(tx).Error
}

// ListByApplication gets the history of an application, oldest first
func (r *transactionRepository) ListByApplication(ctx context.Context, applicationID uint) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&transactions).Error
	return transactions, err
}

// LatestByApplications gets the newest transaction of each application
func (r *transactionRepository) LatestByApplications(ctx context.Context, applicationIDs []uint) (map[uint]*models.Transaction, error) {
	latest := make(map[uint]*models.Transaction, len(applicationIDs))
	if len(applicationIDs) == 0 {
		return latest, nil
	}

	var transactions []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("application_id IN ?", applicationIDs).
		Order("application_id ASC, created_at DESC, id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	for _, t := range transactions {
		if _, ok := latest[t.ApplicationID]; !ok {
			latest[t.ApplicationID] = t
		}
	}
	return latest, nil
}
