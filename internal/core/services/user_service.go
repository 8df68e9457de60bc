package services

import (
	"context"
	"errors"
	"strings"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/pagination"
	"aidtrust/internal/pkg/password"
	"aidtrust/internal/pkg/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	auth     *AuthService
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, auth *AuthService) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
	}
}

// UpdateProfileInput represents update profile input (for self).
// Empty fields keep their current value.
type UpdateProfileInput struct {
	FullName     string `json:"fullname" validate:"max=150"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url,max=500"`
	Country      string `json:"country" validate:"max=100"`
	City         string `json:"city" validate:"max=100"`
	Area         string `json:"area" validate:"max=100"`
	CNIC         string `json:"cnic" validate:"max=20"`
}

// ProfileResponse carries the updated user and a fresh token
type ProfileResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// CreateUserInput represents privileged account creation input
type CreateUserInput struct {
	FullName     string      `json:"fullname" validate:"required,max=150"`
	Email        string      `json:"email" validate:"required,email,max=150"`
	Role         domain.Role `json:"role" validate:"required,role"`
	Password     string      `json:"password" validate:"required,min=8,max=72"`
	ProfileImage string      `json:"profileImage" validate:"omitempty,url,max=500"`
	Country      string      `json:"country" validate:"max=100"`
	City         string      `json:"city" validate:"max=100"`
	Area         string      `json:"area" validate:"max=100"`
	CNIC         string      `json:"cnic" validate:"max=20"`
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the caller's own profile and reissues their token
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*ProfileResponse, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	keep(&user.FullName, input.FullName)
	keep(&user.ProfileImage, input.ProfileImage)
	keep(&user.Country, input.Country)
	keep(&user.City, input.City)
	keep(&user.Area, input.Area)
	keep(&user.CNIC, input.CNIC)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{User: user, Token: token}, nil
}

func keep(field *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*field = v
	}
}

// List lists all users with pagination
func (s *UserService) List(ctx context.Context, page *pagination.Params) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, page.Offset, page.Limit)
}

// ListByRole lists users holding role
func (s *UserService) ListByRole(ctx context.Context, role string, page *pagination.Params) ([]*models.User, int64, error) {
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, 0, domain.ErrInvalidRole
	}
	return s.userRepo.ListByRole(ctx, r, page.Offset, page.Limit)
}

// CreateUser creates a privileged account. Only admins may create admins.
func (s *UserService) CreateUser(ctx context.Context, creator domain.Actor, input *CreateUserInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !input.Role.IsPrivileged() {
		return nil, domain.ErrInvalidRole
	}
	if input.Role == domain.RoleAdmin && creator.Role != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     input.FullName,
		Email:        input.Email,
		Role:         input.Role,
		Password:     hashed,
		ProfileImage: input.ProfileImage,
		Country:      input.Country,
		City:         input.City,
		Area:         input.Area,
		CNIC:         input.CNIC,
		Platform:     domain.PlatformWeb,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"created_by": creator.ID,
	}).Info("User created")

	return user, nil
}
