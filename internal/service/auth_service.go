package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/models"
	"github.com/noah-isme/assignment-helper-api/internal/repository"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
)

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenExpiry time.Duration
}

// AuthService provides registration, login and bearer authentication.
type AuthService struct {
	repo        accountRepository
	credentials *CredentialManager
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo accountRepository, credentials *CredentialManager, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 30 * time.Minute
	}
	return &AuthService{repo: repo, credentials: credentials, validator: validate, logger: logger, config: config}
}

// Register creates a student account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, registerValidationMessage(err))
	}

	_, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrEmailTaken, "Email already registered")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to check email")
	}

	digest, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        req.Email,
		PasswordHash: digest,
		FullName:     req.FullName,
		StudentID:    req.StudentID,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Clone(appErrors.ErrEmailTaken, "Email already registered")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create account")
	}

	s.logger.Info("account registered", zap.String("account_id", account.ID))
	return &dto.RegisterResponse{Message: "User registered successfully", UserID: account.ID}, nil
}

// Login authenticates a student and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid login payload")
	}

	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to fetch account")
	}

	if !s.credentials.VerifyPassword(req.Password, account.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
	}

	token, _, err := s.credentials.IssueToken(TokenClaims{
		Subject:   account.Email,
		Role:      models.RoleStudent,
		AccountID: account.ID,
	}, s.config.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, *models.JWTClaims, error) {
	claims, err := s.credentials.VerifyToken(token)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.repo.FindByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "could not validate credentials")
		}
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load account")
	}
	return account, claims, nil
}

func registerValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch {
			case fe.Field() == "Password" && fe.Tag() == "max":
				return "Password too long (max 72 characters)"
			case fe.Field() == "Email" && fe.Tag() == "email":
				return "invalid email address"
			}
		}
	}
	return "invalid registration payload"
}
