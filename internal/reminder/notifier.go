package reminder

import (
	"log"

	"event-scheduler-api/internal/model"
)

// Notifier delivers a reminder. The scheduler never knows whether delivery
// is synchronous, asynchronous, or a no-op.
type Notifier interface {
	Notify(e *model.Event, email string)
}

// LogNotifier records the reminder instead of sending it; real delivery
// (email) is intentionally out of scope.
type LogNotifier struct{}

func (LogNotifier) Notify(e *model.Event, email string) {
	log.Printf("Reminder: User: %s Your event '%s' is scheduled in 30 minutes!", email, e.Title)
}
