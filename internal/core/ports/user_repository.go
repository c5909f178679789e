package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// UserRepository defines persistence for registered accounts.
type UserRepository interface {
	// FindByEmailOrUsername returns domain.ErrUserNotFound when neither matches.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns domain.ErrUserExists on a unique index violation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
