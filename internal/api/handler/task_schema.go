package handler

import "time"

// --- Request types ---

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time `json:"dueDate"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to the domain structs.

type taskResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type activityResponse struct {
	TaskID     string    `json:"taskId"`
	Action     string    `json:"action"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	At         time.Time `json:"at"`
}
