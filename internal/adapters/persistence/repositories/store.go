package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormStore implements Store on a gorm connection
type gormStore struct {
	db    *gorm.DB
	repos *Repositories
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db, repos: bind(db)}
}

func bind(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Applications: NewApplicationRepository(db),
		Transactions: NewTransactionRepository(db),
		Funds:        NewFundRepository(db),
		Documents:    NewDocumentRepository(db),
	}
}

// Repos returns repositories bound to the base connection
func (s *gormStore) Repos() *Repositories {
	return s.repos
}

// WithinTx runs fn inside a database transaction
func (s *gormStore) WithinTx(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

// Ping checks the database connection
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
