package ports

import (
	"context"
	"time"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// CreateTaskInput carries the client-supplied task fields.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     *time.Time
}

// TaskService defines the owner-scoped task use cases.
type TaskService interface {
	Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
	Activity(ctx context.Context, ownerID, taskID string) ([]*domain.TaskActivity, error)
}
