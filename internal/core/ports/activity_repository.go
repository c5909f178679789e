package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// ActivityRepository persists the task audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.TaskActivity) error
	// ListByTask returns entries oldest first.
	ListByTask(ctx context.Context, ownerID, taskID string) ([]*domain.TaskActivity, error)
}
