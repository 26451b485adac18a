package reminder_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-scheduler-api/internal/model"
	"event-scheduler-api/internal/reminder"
	"event-scheduler-api/internal/store"
)

// fakeGetter serves events from a map, standing in for the store.
type fakeGetter struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

func newFakeGetter(events ...*model.Event) *fakeGetter {
	g := &fakeGetter{events: make(map[string]*model.Event)}
	for _, e := range events {
		g.events[e.ID] = e
	}
	return g
}

func (g *fakeGetter) GetEvent(_ context.Context, id string) (*model.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.events[id]; ok {
		return e, nil
	}
	return nil, store.ErrNotFound
}

func (g *fakeGetter) remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.events, id)
}

type notification struct {
	eventID string
	email   string
}

// chanNotifier reports deliveries on a channel so tests can wait on them.
type chanNotifier struct {
	ch chan notification
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{ch: make(chan notification, 16)}
}

func (n *chanNotifier) Notify(e *model.Event, email string) {
	n.ch <- notification{eventID: e.ID, email: email}
}

func (n *chanNotifier) wait(t *testing.T, timeout time.Duration) (notification, bool) {
	t.Helper()
	select {
	case got := <-n.ch:
		return got, true
	case <-time.After(timeout):
		return notification{}, false
	}
}

func event(id string, startIn time.Duration) *model.Event {
	return &model.Event{
		ID:           id,
		Title:        "Event " + id,
		Description:  "some description",
		Venue:        "some venue",
		Location:     "some location",
		EventDate:    time.Now().Add(startIn),
		Participants: 1,
	}
}

func TestFiresAtLeadOffset(t *testing.T) {
	e := event("e1", 100*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 50*time.Millisecond)
	defer s.Stop()

	s.Schedule(e, "a@test.com")

	got, ok := n.wait(t, time.Second)
	if !ok {
		t.Fatal("reminder never fired")
	}
	if got.eventID != "e1" || got.email != "a@test.com" {
		t.Errorf("got %+v", got)
	}
}

func TestFiresImmediatelyWhenWithinLead(t *testing.T) {
	// event starts in 50ms but the lead is 30min: fire now rather than skip
	e := event("e1", 50*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 30*time.Minute)
	defer s.Stop()

	s.Schedule(e, "a@test.com")

	if _, ok := n.wait(t, time.Second); !ok {
		t.Fatal("expected immediate fire for event within lead window")
	}
}

func TestSkipsEventAlreadyStarted(t *testing.T) {
	e := event("e1", -time.Minute)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 30*time.Minute)
	defer s.Stop()

	s.Schedule(e, "a@test.com")

	if _, ok := n.wait(t, 100*time.Millisecond); ok {
		t.Fatal("reminder fired for an event that already started")
	}
}

func TestCancel(t *testing.T) {
	e := event("e1", 200*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 100*time.Millisecond)
	defer s.Stop()

	s.Schedule(e, "a@test.com")
	if !s.Cancel("e1") {
		t.Fatal("cancel reported no pending job")
	}
	if s.Cancel("e1") {
		t.Error("second cancel should find nothing")
	}

	if _, ok := n.wait(t, 300*time.Millisecond); ok {
		t.Fatal("cancelled reminder fired")
	}
}

func TestSkipsDeletedEventAtFireTime(t *testing.T) {
	e := event("e1", 100*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 50*time.Millisecond)
	defer s.Stop()

	s.Schedule(e, "a@test.com")
	// event vanishes after scheduling but before fire time
	getter.remove("e1")

	if _, ok := n.wait(t, 300*time.Millisecond); ok {
		t.Fatal("reminder fired for a deleted event")
	}
}

func TestRescheduleReplacesTimer(t *testing.T) {
	e := event("e1", 80*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 40*time.Millisecond)
	defer s.Stop()

	s.Schedule(e, "a@test.com")

	// move the event further out and re-arm for a different recipient
	moved := *e
	moved.EventDate = time.Now().Add(200 * time.Millisecond)
	s.Schedule(&moved, "b@test.com")

	got, ok := n.wait(t, time.Second)
	if !ok {
		t.Fatal("rescheduled reminder never fired")
	}
	if got.email != "b@test.com" {
		t.Errorf("expected rescheduled recipient, got %q", got.email)
	}
	// only one delivery in total
	if _, ok := n.wait(t, 150*time.Millisecond); ok {
		t.Error("old timer fired as well")
	}
}

func TestRescheduleIntoPastDropsTimer(t *testing.T) {
	e := event("e1", 150*time.Millisecond)
	getter := newFakeGetter(e)
	n := newChanNotifier()
	s := reminder.New(getter, n, 50*time.Millisecond)
	defer s.Stop()

	s.Schedule(e, "a@test.com")

	// the update moved the event into the past; the pending timer must go
	moved := *e
	moved.EventDate = time.Now().Add(-time.Hour)
	s.Schedule(&moved, "a@test.com")

	if _, ok := n.wait(t, 300*time.Millisecond); ok {
		t.Fatal("reminder fired after event was moved into the past")
	}
}

func TestStopCancelsEverything(t *testing.T) {
	e1 := event("e1", 100*time.Millisecond)
	e2 := event("e2", 120*time.Millisecond)
	getter := newFakeGetter(e1, e2)
	n := newChanNotifier()
	s := reminder.New(getter, n, 50*time.Millisecond)

	s.Schedule(e1, "a@test.com")
	s.Schedule(e2, "b@test.com")
	s.Stop()

	if _, ok := n.wait(t, 300*time.Millisecond); ok {
		t.Fatal("reminder fired after Stop")
	}
}

func TestIndependentReminders(t *testing.T) {
	e1 := event("e1", 60*time.Millisecond)
	e2 := event("e2", 90*time.Millisecond)
	getter := newFakeGetter(e1, e2)
	n := newChanNotifier()
	s := reminder.New(getter, n, 30*time.Millisecond)
	defer s.Stop()

	s.Schedule(e1, "a@test.com")
	s.Schedule(e2, "b@test.com")

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		got, ok := n.wait(t, time.Second)
		if !ok {
			t.Fatalf("only %d of 2 reminders fired", i)
		}
		seen[got.eventID] = true
	}
	if !seen["e1"] || !seen["e2"] {
		t.Errorf("expected both events, got %v", seen)
	}
}
