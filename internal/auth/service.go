// Package auth implements the identity provider: email/password accounts
// with bcrypt-hashed credentials and JWT session tokens.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftfolio-api/internal/config"
	"github.com/craftfolio-api/internal/models"
	"github.com/craftfolio-api/internal/repository"
	"github.com/craftfolio-api/internal/validation"
)

// Service provides sign-up, sign-in and current-user lookup
type Service struct {
	users repository.UserRepository
	cfg   *config.AuthConfig
	log   zerolog.Logger
}

// NewService creates a new auth service
func NewService(users repository.UserRepository, cfg *config.AuthConfig, log zerolog.Logger) *Service {
	return &Service{
		users: users,
		cfg:   cfg,
		log:   log.With().Str("service", "auth").Logger(),
	}
}

// SignUp registers a new account and returns the user with a session token
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*models.User, string, error) {
	if err := validation.Email(email); err != nil {
		return nil, "", err
	}
	if err := validation.Password(password); err != nil {
		return nil, "", err
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, "", models.NewBackendError("email lookup", err)
	}
	if exists {
		return nil, "", models.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", models.NewBackendError("password hash", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         "member",
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Name == "" {
		user.Name = email
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", models.NewBackendError("create user", err)
	}

	token, err := issueToken([]byte(s.cfg.JWTSecret), s.cfg.TokenTTL, user.ID, user.Email)
	if err != nil {
		return nil, "", models.NewBackendError("issue token", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("Account created")
	return user, token, nil
}

// SignIn verifies credentials and returns the user with a session token
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", models.NewBackendError("user lookup", err)
	}
	if user == nil || !user.Active {
		return nil, "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := issueToken([]byte(s.cfg.JWTSecret), s.cfg.TokenTTL, user.ID, user.Email)
	if err != nil {
		return nil, "", models.NewBackendError("issue token", err)
	}

	return user, token, nil
}

// CurrentUser resolves a session token to the signed-in user. An invalid
// token yields ErrAuthRequired, the caller is expected to prompt for a
// fresh sign-in rather than treat it as fatal.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := parseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return nil, models.ErrAuthRequired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewBackendError("user lookup", err)
	}
	if user == nil || !user.Active {
		return nil, models.ErrAuthRequired
	}
	return user, nil
}
