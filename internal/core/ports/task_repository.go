package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// TaskRepository defines persistence for tasks. Every lookup and mutation is
// filtered by owner; a task outside the owner's scope is reported as
// domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	FindByID(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// UpdateStatus sets only the status (and updated timestamp) and returns
	// the document as it is after the update.
	UpdateStatus(ctx context.Context, ownerID, taskID string, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}
