package memory

import (
	"context"
	"sync"

	id "biokey/pkg/domain"
	audit "biokey/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory, mirroring the rest of
// the service's volatile state. It doubles as the default Publisher.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.AccountID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.AccountID][]audit.Event)}
}

func (s *InMemoryStore) Emit(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.AccountID] = append(s.events[event.AccountID], event)
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, accountID id.AccountID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[accountID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.AccountID][]audit.Event)
}
