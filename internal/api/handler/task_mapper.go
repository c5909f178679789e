package handler

import (
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
}

// --- Domain → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		resp.DueDate = &due
	}
	return resp
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}

func toActivityResponse(entries []*domain.TaskActivity) []activityResponse {
	out := make([]activityResponse, len(entries))
	for i, a := range entries {
		out[i] = activityResponse{
			TaskID:     a.TaskID,
			Action:     string(a.Action),
			FromStatus: string(a.FromStatus),
			ToStatus:   string(a.ToStatus),
			At:         a.At.UTC(),
		}
	}
	return out
}
