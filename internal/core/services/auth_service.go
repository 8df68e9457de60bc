package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/config"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/jwt"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/password"
	"aidtrust/internal/pkg/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginInput represents login input. Password accounts send email and
// password; social sign-in sends fullname, email and optionally
// profileImage and platform.
type LoginInput struct {
	Email        string          `json:"email" validate:"required,email,max=150"`
	Password     string          `json:"password"`
	FullName     string          `json:"fullname" validate:"max=150"`
	ProfileImage string          `json:"profileImage" validate:"omitempty,url,max=500"`
	Platform     domain.Platform `json:"platform" validate:"omitempty,oneof=google web mobile"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login authenticates a user, registering first-time social sign-ins
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var (
		user *models.User
		err  error
	)
	if input.Password != "" {
		user, err = s.passwordLogin(ctx, input)
	} else {
		user, err = s.socialLogin(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User logged in")

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) passwordLogin(ctx context.Context, input *LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() || !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.touch(ctx, user)
}

func (s *AuthService) socialLogin(ctx context.Context, input *LoginInput) (*models.User, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, domain.Invalidf("Fullname and email are required.")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		// Accounts holding a password never sign in without it
		if user.HasPassword() {
			return nil, domain.ErrInvalidCredentials
		}
		return s.touch(ctx, user)
	case !errors.Is(err, repositories.ErrRecordNotFound):
		return nil, err
	}

	platform := input.Platform
	if platform == "" {
		platform = domain.PlatformWeb
	}
	now := time.Now()
	user = &models.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        input.Email,
		ProfileImage: input.ProfileImage,
		Platform:     platform,
		Role:         domain.RoleUser,
		LastLoggedIn: &now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func (s *AuthService) touch(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.LastLoggedIn = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken signs an access token for user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		string(user.Role),
		s.cfg.Secret,
		s.cfg.ExpiryDays,
	)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.Secret)
}
