package notification

import (
	"slices"
	"sync"
)

// Store is the registry of active notifications. All operations are total:
// saving always succeeds, removing an absent id is a no-op, and listing
// returns a snapshot consistent with the latest completed mutation.
type Store interface {
	// Save inserts a notification; an existing entry with the same id is
	// replaced in place without changing its position.
	Save(n *Notification)
	// Get retrieves a copy of a notification, or nil if absent.
	Get(id string) *Notification
	// List returns copies of all active notifications in insertion order
	// (oldest first).
	List() []*Notification
	// Remove deletes a notification and returns a copy of the removed
	// entry, or nil if the id was not present.
	Remove(id string) *Notification
	// Len returns the number of active notifications.
	Len() int
}

// InMemoryStore provides a thread-safe in-memory notification registry that
// preserves insertion order. It is unbounded: entries leave only through
// Remove, so the registry length always equals inserts minus removes.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Notification
	order   []string
}

// NewInMemoryStore creates an empty in-memory notification registry.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]*Notification),
	}
}

// Save stores a clone of the notification so later mutations by the caller
// cannot reach registry state. New ids append to the iteration order;
// re-saving an existing id replaces the entry in place.
func (s *InMemoryStore) Save(n *Notification) {
	if n == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.entries[n.ID] = n.Clone()
}

// Get retrieves a copy of a notification by ID, or nil if absent.
func (s *InMemoryStore) Get(id string) *Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries[id].Clone()
}

// List returns copies of all active notifications, oldest first.
func (s *InMemoryStore) List() []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Notification, 0, len(s.order))
	for _, id := range s.order {
		results = append(results, s.entries[id].Clone())
	}
	return results
}

// Remove deletes a notification and returns a copy of the removed entry.
// Removing an absent id returns nil and leaves the registry unchanged; the
// dismissal path relies on this when a user dismissal races a timer fire.
func (s *InMemoryStore) Remove(id string) *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.entries[id]
	if !exists {
		return nil
	}

	delete(s.entries, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return n
}

// Len returns the number of active notifications.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
