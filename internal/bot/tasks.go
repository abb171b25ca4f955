package bot

import (
	"context"
	"time"
)

const maintenanceTimeout = 1 * time.Minute

// ScheduledTaskFunc is the signature of all scheduled tasks. The context
// provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the map of registered scheduled tasks. The keys
// match the task names used in the scheduler configuration.
func RegisterAllTasks(deps HandlerDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["table_maintenance"] = func(ctx context.Context) error {
		taskCtx, cancel := context.WithTimeout(ctx, maintenanceTimeout)
		defer cancel()
		return deps.Store.Maintain(taskCtx)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
