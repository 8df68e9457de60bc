package repositories

import (
	"context"

	"aidtrust/internal/adapters/persistence/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Submitter").
		Preload("LastUpdater").
		Preload("Officer")
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

// GetByID gets an application by ID with relations
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.withRelations(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByToken gets an application by its public lookup token
func (r *applicationRepository) GetByToken(ctx context.Context, token string) (*models.Application, error) {
	var app models.Application
	if err := r.withRelations(ctx).Where("token = ?", token).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ExistsByToken checks if a lookup token is taken
func (r *applicationRepository) ExistsByToken(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

// UpdateWithVersion saves every column of app conditioned on the stored version
func (r *applicationRepository) UpdateWithVersion(ctx context.Context, app *models.Application, expected uint) error {
	res := r.db.WithContext(ctx).
		Model(app).
		Where("version = ?", expected).
		Select("*").
		Omit("created_at", clause.Associations).
		Updates(app)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// Filter lists applications matching filter, newest first
func (r *applicationRepository) Filter(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	query := applyApplicationFilter(r.db.WithContext(ctx).Model(&models.Application{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applyApplicationFilter(r.withRelations(ctx), filter).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func applyApplicationFilter(query *gorm.DB, f ApplicationFilter) *gorm.DB {
	if f.HasDateRange() {
		query = query.Where("created_at BETWEEN ? AND ?", *f.StartDate, *f.EndDate)
	}
	if f.Country != "" {
		query = query.Where(datatypes.JSONQuery("form").Equals(f.Country, "country"))
	}
	if f.City != "" {
		query = query.Where(datatypes.JSONQuery("form").Equals(f.City, "city"))
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.SubCategory != "" {
		query = query.Where("sub_category = ?", f.SubCategory)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.OfficerID != 0 {
		query = query.Where("inquiry_officer_id = ?", f.OfficerID)
	}
	if f.SubmittedBy != 0 {
		query = query.Where("submitted_by = ?", f.SubmittedBy)
	}
	return query
}

// ListAfter pages through applications by id without relations
func (r *applicationRepository) ListAfter(ctx context.Context, afterID uint, limit int) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}
