package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
	"github.com/tasktracker/task-api/internal/metrics"
)

type TaskService struct {
	repo     ports.TaskRepository
	activity ports.ActivityRepository
	recorder ports.ActivityRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTaskService(repo ports.TaskRepository, activity ports.ActivityRepository, recorder ports.ActivityRecorder, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, activity: activity, recorder: recorder, logger: logger, now: time.Now}
}

// Create stores a new task owned by ownerID. Status defaults to pending and
// priority to medium.
func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	status := domain.StatusPending
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, invalidStatus(in.Status)
		}
	}

	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.TaskPriority(in.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: priority must be one of: low medium high", domain.ErrValidation)
		}
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Task{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(created.Priority)).Inc()
	s.recorder.Record(domain.TaskActivity{
		TaskID:   created.ID,
		UserID:   ownerID,
		Action:   domain.ActionCreated,
		ToStatus: created.Status,
		At:       now,
	})
	s.logger.Info().Str("task_id", created.ID).Str("user_id", ownerID).Msg("task created")
	return created, nil
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, ownerID, taskID)
}

// UpdateStatus replaces the status of an owned task and leaves every other
// field as stored.
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*domain.Task, error) {
	next := domain.TaskStatus(status)
	if !next.Valid() {
		return nil, invalidStatus(status)
	}

	current, err := s.repo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, ownerID, taskID, next)
	if err != nil {
		return nil, err
	}

	if current.Status != next {
		metrics.TaskStatusChangesTotal.WithLabelValues(string(next)).Inc()
		s.recorder.Record(domain.TaskActivity{
			TaskID:     taskID,
			UserID:     ownerID,
			Action:     domain.ActionStatusChanged,
			FromStatus: current.Status,
			ToStatus:   next,
			At:         s.now().UTC(),
		})
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	current, err := s.repo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil {
		return err
	}

	s.recorder.Record(domain.TaskActivity{
		TaskID:     taskID,
		UserID:     ownerID,
		Action:     domain.ActionDeleted,
		FromStatus: current.Status,
		At:         s.now().UTC(),
	})
	s.logger.Info().Str("task_id", taskID).Str("user_id", ownerID).Msg("task deleted")
	return nil
}

// Activity returns the audit trail of an owned task, oldest first.
func (s *TaskService) Activity(ctx context.Context, ownerID, taskID string) ([]*domain.TaskActivity, error) {
	if _, err := s.repo.FindByID(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	entries, err := s.activity.ListByTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if entries == nil {
		entries = []*domain.TaskActivity{}
	}
	return entries, nil
}

func invalidStatus(got string) error {
	return fmt.Errorf("%w: status must be one of: %s %s %s (got %q)", domain.ErrValidation,
		domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, got)
}
