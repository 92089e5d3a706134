package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apierrors.New(apierrors.ErrConflict, "Email is already registered")
	ErrInvalidCredentials = apierrors.New(apierrors.ErrUnauthenticated, "Invalid email or password")
	ErrPasswordTooShort   = apierrors.Newf(apierrors.ErrValidation, "Password must be at least %d characters", constants.MinPasswordLength)
	ErrEmailRequired      = apierrors.New(apierrors.ErrValidation, "Email is required")
	ErrSessionInvalid     = apierrors.New(apierrors.ErrUnauthenticated, "Session expired or invalid")
)

// SessionStore issues and resolves opaque session tokens.
type SessionStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (*session.Data, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	sessions SessionStore
	log      *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessions SessionStore, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		log:      log,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name, err := normalizeName(input.Name, "Name")
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.StoreFailure("check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.StoreFailure("hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apierrors.StoreFailure("create user", err)
	}

	s.log.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and opens a session. It returns the user and
// the session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apierrors.StoreFailure("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", apierrors.StoreFailure("issue session", err)
	}

	return user, token, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apierrors.StoreFailure("revoke session", err)
	}
	return nil
}

// CurrentUser returns the user owning the session token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	data, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, apierrors.StoreFailure("resolve session", err)
	}

	user, err := s.userRepo.FindByID(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, apierrors.StoreFailure("find user", err)
	}
	return user, nil
}
