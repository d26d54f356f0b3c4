package tasks

import "context"

// newHeartbeatTask prints the polling liveness notice. It touches no storage.
func newHeartbeatTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		deps.Console.Heartbeat()
		return nil
	}
}
