package notification

import (
	"sync"
	"time"
)

// Scheduler owns the pending auto-dismiss timers, one per notification id.
// The handle map is the single owner of live timers: every schedule stores a
// cancellable handle and every fire or cancel discards it, so handles never
// leak across a notification's lifetime.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	onExpire func(id string)
}

// NewScheduler creates a scheduler that invokes onExpire with the
// notification id whenever a timer fires. onExpire runs on the timer's own
// goroutine and must tolerate ids that are no longer active.
func NewScheduler(onExpire func(id string)) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		onExpire: onExpire,
	}
}

// Schedule arms a one-shot dismissal timer for id. A duration of zero or
// less never creates a timer: the notification is sticky and only an
// explicit dismissal removes it. Scheduling an id that already has a pending
// timer replaces it, so a re-armed notification keeps exactly one handle.
func (s *Scheduler) Schedule(id string, d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A fire that lost a race against Cancel or a re-arm finds a
		// missing or different handle and backs off; the stale fire has
		// no effect.
		if current, ok := s.timers[id]; !ok || current != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		s.onExpire(id)
	})
	s.timers[id] = t
}

// Cancel stops and discards the pending timer for id. Cancelling an absent,
// already-fired, or already-cancelled timer is a no-op, never an error.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// CancelAll stops every pending timer. Used on service shutdown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
