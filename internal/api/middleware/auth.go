package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

type claimsCtxKey struct{}

// WithClaims returns a copy of ctx carrying the verified token claims.
func WithClaims(ctx context.Context, claims *ports.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the claims stored by Auth, if any.
func ClaimsFromContext(ctx context.Context) (*ports.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*ports.TokenClaims)
	return claims, ok && claims != nil
}

// Auth validates the bearer token and attaches the caller's identity to the
// request context, where handlers read it with ClaimsFromContext. revoker may
// be nil, in which case logged-out tokens are not checked.
func Auth(verifier ports.TokenVerifier, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthenticated("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return unauthenticated("invalid authorization header")
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return unauthenticated("token expired")
				}
				return unauthenticated("invalid token")
			}

			if revoker != nil && claims.TokenID != "" {
				revoked, err := revoker.IsRevoked(c.Request().Context(), claims.TokenID)
				if err != nil {
					return err
				}
				if revoked {
					return unauthenticated("token revoked")
				}
			}

			c.SetRequest(c.Request().WithContext(WithClaims(c.Request().Context(), claims)))

			return next(c)
		}
	}
}

func unauthenticated(msg string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(domain.ErrUnauthenticated)
}
