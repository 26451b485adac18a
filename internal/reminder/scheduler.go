package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"event-scheduler-api/internal/model"
)

// Lead is how long before an event's start its reminder fires.
const Lead = 30 * time.Minute

// EventGetter is the narrow store view the scheduler needs at fire time.
type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

type job struct {
	timer *time.Timer
	email string
}

// Scheduler arms one in-memory one-shot timer per event. Jobs are
// fire-and-forget: no persistence, no retries, no recurrence. If the fire
// time is already past but the event hasn't started, the reminder fires
// immediately; if the event itself has started, scheduling is a no-op.
//
// The event is re-fetched at fire time and the job is skipped silently when
// it no longer exists, so a reminder racing a delete never reaches the
// notifier with stale data.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	events EventGetter
	notify Notifier
	lead   time.Duration
}

func New(events EventGetter, n Notifier, lead time.Duration) *Scheduler {
	return &Scheduler{
		jobs:   make(map[string]*job),
		events: events,
		notify: n,
		lead:   lead,
	}
}

// Schedule arms (or re-arms) the reminder for e, addressed to email. An
// event whose start has already passed gets no reminder, and any previously
// armed timer for it is dropped.
func (s *Scheduler) Schedule(e *model.Event, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[e.ID]; ok {
		old.timer.Stop()
		delete(s.jobs, e.ID)
	}
	if !e.EventDate.After(time.Now()) {
		return
	}
	delay := time.Until(e.EventDate.Add(-s.lead))
	if delay < 0 {
		delay = 0
	}

	id := e.ID
	j := &job{email: email}
	j.timer = time.AfterFunc(delay, func() { s.fire(id, j) })
	s.jobs[id] = j
}

// Cancel stops the pending reminder for an event, if any.
func (s *Scheduler) Cancel(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[eventID]
	if !ok {
		return false
	}
	j.timer.Stop()
	delete(s.jobs, eventID)
	return true
}

// Stop cancels every pending reminder; used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, id)
	}
}

// fire runs in the timer goroutine. A timer that lost a race with Cancel or
// a re-arm finds a different (or no) job under its key and backs off.
func (s *Scheduler) fire(eventID string, j *job) {
	s.mu.Lock()
	cur, ok := s.jobs[eventID]
	if !ok || cur != j {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, eventID)
	s.mu.Unlock()

	// the event may have been deleted since scheduling
	e, err := s.events.GetEvent(context.Background(), eventID)
	if err != nil {
		log.Printf("reminder: event %s gone, skipping: %v", eventID, err)
		return
	}
	s.notify.Notify(e, j.email)
}
