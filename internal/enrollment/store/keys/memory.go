package keys

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	id "biokey/pkg/domain"
	"biokey/pkg/platform/sentinel"
)

// InMemoryKeyStore keeps the ordered list of public keys bound to each
// account. Registration order matters: authorization tries keys oldest-first.
type InMemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[id.AccountID][]ed25519.PublicKey
}

func NewInMemoryKeyStore() *InMemoryKeyStore {
	return &InMemoryKeyStore{keys: make(map[id.AccountID][]ed25519.PublicKey)}
}

// Append adds a key to the end of the account's list. Returns
// sentinel.ErrConflict when the key is already bound to the account.
func (s *InMemoryKeyStore) Append(_ context.Context, accountID id.AccountID, key ed25519.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.keys[accountID] {
		if bytes.Equal(existing, key) {
			return sentinel.ErrConflict
		}
	}
	s.keys[accountID] = append(s.keys[accountID], key)
	return nil
}

// List returns the account's keys in registration order. An empty slice means
// the account has never registered.
func (s *InMemoryKeyStore) List(_ context.Context, accountID id.AccountID) ([]ed25519.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ed25519.PublicKey{}, s.keys[accountID]...), nil
}
