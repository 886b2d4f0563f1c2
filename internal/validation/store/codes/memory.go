package codes

import (
	"context"
	"sync"

	id "biokey/pkg/domain"
)

// InMemoryCodeStore keeps per-account validation code queues in process
// memory. Codes are appended in issuance order; redemption only ever looks at
// the most recently issued entry, so an older unconsumed code is permanently
// orphaned once a newer one exists.
type InMemoryCodeStore struct {
	mu    sync.RWMutex
	codes map[id.AccountID][]int
}

func NewInMemoryCodeStore() *InMemoryCodeStore {
	return &InMemoryCodeStore{codes: make(map[id.AccountID][]int)}
}

// Append adds a freshly issued code to the end of the account's queue.
// The queue is unbounded.
func (s *InMemoryCodeStore) Append(_ context.Context, accountID id.AccountID, code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[accountID] = append(s.codes[accountID], code)
	return nil
}

// ConsumeLast compares presented against the newest queued code. On match the
// code is removed and true is returned; otherwise the queue is untouched.
func (s *InMemoryCodeStore) ConsumeLast(_ context.Context, accountID id.AccountID, presented int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.codes[accountID]
	if len(queue) == 0 {
		return false, nil
	}
	if queue[len(queue)-1] != presented {
		return false, nil
	}
	s.codes[accountID] = queue[:len(queue)-1]
	return true, nil
}

// Len reports the number of pending codes for an account.
func (s *InMemoryCodeStore) Len(_ context.Context, accountID id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes[accountID]), nil
}
