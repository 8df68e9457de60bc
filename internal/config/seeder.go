package config

import (
	"context"
	"errors"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	store repositories.Store
	seed  SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store, seed SeedConfig) *Seeder {
	return &Seeder{store: store, seed: seed}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdminUser(ctx); err != nil {
		logger.Log.WithError(err).Warn("Admin seeder skipped")
	}
	return nil
}

// seedAdminUser creates the bootstrap admin from SEED_ADMIN_* when it does not exist
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.seed.AdminEmail == "" {
		return nil
	}
	if s.seed.AdminPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD is not set")
	}
	if !password.ValidatePassword(s.seed.AdminPassword) {
		return errors.New("SEED_ADMIN_PASSWORD must be at least 8 characters")
	}

	users := s.store.Repos().Users
	exists, err := users.ExistsByEmail(ctx, s.seed.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := password.Hash(s.seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		FullName: s.seed.AdminName,
		Email:    s.seed.AdminEmail,
		Password: hashed,
		Role:     domain.RoleAdmin,
		Platform: domain.PlatformWeb,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Log.WithField("email", admin.Email).Info("Admin user created")
	return nil
}
