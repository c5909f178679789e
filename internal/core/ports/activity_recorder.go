package ports

import "github.com/tasktracker/task-api/internal/core/domain"

// ActivityRecorder accepts audit entries for asynchronous persistence.
// Record must not block the caller.
type ActivityRecorder interface {
	Record(a domain.TaskActivity)
}
