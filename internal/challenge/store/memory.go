// Package store owns the outstanding challenge map. No other component reads
// or mutates it; consumption and eviction both go through here.
package store

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"
)

// Challenge is an issued, not-yet-consumed nonce with its absolute deadline.
type Challenge struct {
	Nonce   string
	Expires time.Time
}

// InMemoryChallengeStore maps serialized token strings to their challenges.
// The token string itself is the key: lookups during verification are a
// linear trial-verify over every stored token, because the presented value is
// a signature and signatures cannot index the map.
//
// The mutex is held across the whole scan-then-delete sequence so two
// concurrent verification attempts cannot both consume the same entry.
type InMemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]Challenge
}

func NewInMemoryChallengeStore() *InMemoryChallengeStore {
	return &InMemoryChallengeStore{entries: make(map[string]Challenge)}
}

// Put records a freshly issued challenge under its token string.
func (s *InMemoryChallengeStore) Put(_ context.Context, token string, ch Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = ch
}

// Delete evicts a challenge. Deleting an absent key is a no-op; the expiry
// timer and an in-flight consumption may race on the same entry. Reports
// whether an entry was actually removed.
func (s *InMemoryChallengeStore) Delete(_ context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.entries[token]
	delete(s.entries, token)
	return existed
}

// ConsumeMatching scans every stored token, trying the presented signature
// against the token string's bytes under the given public key. The first
// token that verifies is deleted and returned, whether or not it has expired:
// a challenge is consumed by its first matching attempt, full stop. A failed
// verification against one candidate is a non-match, never an error, and the
// scan continues.
func (s *InMemoryChallengeStore) ConsumeMatching(_ context.Context, signature []byte, publicKey ed25519.PublicKey) (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok, ch := range s.entries {
		if verifies(publicKey, []byte(tok), signature) {
			delete(s.entries, tok)
			return ch, true
		}
	}
	return Challenge{}, false
}

// Len reports the number of outstanding challenges.
func (s *InMemoryChallengeStore) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// verifies wraps ed25519.Verify so malformed inputs degrade to a non-match
// instead of panicking mid-scan.
func verifies(publicKey ed25519.PublicKey, message, signature []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}
