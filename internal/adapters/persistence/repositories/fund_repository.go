package repositories

import (
	"context"

	"aidtrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fundRepository implements FundRepository interface
type fundRepository struct {
	db *gorm.DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *gorm.DB) FundRepository {
	return &fundRepository{db: db}
}

// Create creates a new fund record
func (r *fundRepository) Create(ctx context.Context, fund *models.Fund) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(fund).Error
}

// GetByID gets a fund with its application and issuer
func (r *fundRepository) GetByID(ctx context.Context, id uint) (*models.Fund, error) {
	var fund models.Fund
	err := r.db.WithContext(ctx).
		Preload("Application").
		Preload("Issuer").
		First(&fund, id).Error
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

// Update updates a fund record
func (r *fundRepository) Update(ctx context.Context, fund *models.Fund) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(fund).Error
}

// List lists funds matching filter, newest first
func (r *fundRepository) List(ctx context.Context, filter FundFilter) ([]*models.Fund, error) {
	query := r.db.WithContext(ctx).Preload("Application").Preload("Issuer")

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.FundType != "" {
		query = query.Where("fund_type = ?", filter.FundType)
	}
	if filter.Frequency != "" {
		query = query.Where("frequency = ?", filter.Frequency)
	}

	var funds []*models.Fund
	err := query.Order("created_at DESC, id DESC").Find(&funds).Error
	return funds, err
}
