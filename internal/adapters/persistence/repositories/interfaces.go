package repositories

import (
	"context"
	"errors"
	"time"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/core/domain"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned by every Get method when nothing matches
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// ErrStaleVersion is returned by UpdateWithVersion when the stored
	// version no longer matches the one the caller read
	ErrStaleVersion = errors.New("stale version")
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ApplicationFilter narrows application listings. Zero values are unconstrained.
// The date range applies only when both ends are set.
type ApplicationFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Country     string
	City        string
	Category    string
	SubCategory string
	Status      domain.Status
	OfficerID   uint
	SubmittedBy uint
}

// HasDateRange reports whether the filter constrains createdAt
func (f ApplicationFilter) HasDateRange() bool {
	return f.StartDate != nil && f.EndDate != nil
}

// ApplicationRepository defines application repository interface.
// Get and Filter preload submitter, last updater and officer.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	GetByToken(ctx context.Context, token string) (*models.Application, error)
	ExistsByToken(ctx context.Context, token string) (bool, error)
	// UpdateWithVersion writes app only if the stored version equals expected
	UpdateWithVersion(ctx context.Context, app *models.Application, expected uint) error
	Filter(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]*models.Application, int64, error)
	// ListAfter returns up to limit applications with id > afterID ordered by id
	ListAfter(ctx context.Context, afterID uint, limit int) ([]*models.Application, error)
}

// TransactionRepository is the append-only audit store
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// ListByApplication returns the history oldest first
	ListByApplication(ctx context.Context, applicationID uint) ([]*models.Transaction, error)
	// LatestByApplications returns the newest transaction per application id
	LatestByApplications(ctx context.Context, applicationIDs []uint) (map[uint]*models.Transaction, error)
}

// FundFilter narrows fund listings by createdAt, type and frequency
type FundFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	FundType  domain.FundType
	Frequency domain.Frequency
}

// FundRepository defines fund repository interface
type FundRepository interface {
	Create(ctx context.Context, fund *models.Fund) error
	GetByID(ctx context.Context, id uint) (*models.Fund, error)
	Update(ctx context.Context, fund *models.Fund) error
	List(ctx context.Context, filter FundFilter) ([]*models.Fund, error)
}

// DocumentRepository defines document repository interface
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	ListByApplication(ctx context.Context, applicationID uint) ([]*models.Document, error)
}

// Repositories bundles every repository bound to one connection or transaction
type Repositories struct {
	Users        UserRepository
	Applications ApplicationRepository
	Transactions TransactionRepository
	Funds        FundRepository
	Documents    DocumentRepository
}

// Store hands out repositories and runs units of work
type Store interface {
	Repos() *Repositories
	// WithinTx runs fn against repositories bound to a single transaction.
	// Any error returned by fn rolls back every write made through them.
	WithinTx(ctx context.Context, fn func(r *Repositories) error) error
	Ping(ctx context.Context) error
}
