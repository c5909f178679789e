package domain

import "time"

// ActivityAction names the kind of mutation recorded in the activity log.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionDeleted       ActivityAction = "deleted"
)

// TaskActivity is one entry of a task's audit trail.
type TaskActivity struct {
	TaskID     string
	UserID     string
	Action     ActivityAction
	FromStatus TaskStatus // empty for created
	ToStatus   TaskStatus // empty for deleted
	At         time.Time
}
