package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
	"github.com/tasktracker/task-api/internal/metrics"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenIssuer
	revoker ports.TokenRevoker
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, revoker ports.TokenRevoker, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, revoker: revoker, log: log, now: time.Now}
}

// Register creates an account and returns a token for it. Email and username
// must both be unused.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return "", fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	_, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		return "", domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			return "", err
		}
		return "", fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return token, nil
}

// Login checks the password against the stored bcrypt hash. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Logout revokes the token for whatever lifetime it has left. A token that
// is already past its expiry needs no revocation.
func (s *AuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 || claims.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("token revoked")
	return nil
}
