package ports

import (
	"context"
	"time"
)

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// TokenIssuer signs new access tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// TokenVerifier checks signature and expiry and returns the bound identity.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// TokenRevoker tracks logged-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims TokenClaims) error
}
