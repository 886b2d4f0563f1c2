// Package challenge implements the challenge lifecycle: nonce issuance,
// signed-token encoding, deferred eviction, and signature-based recovery of
// the original challenge from a presented proof.
package challenge

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"biokey/internal/challenge/store"
	"biokey/internal/challenge/token"
	"biokey/internal/platform/metrics"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
)

const (
	nonceBytes = 16
	defaultTTL = 10 * time.Minute
)

// KeySource reports the keys registered for an account. Issuance refuses to
// mint challenges for accounts with no keys.
type KeySource interface {
	KeysFor(ctx context.Context, accountID id.AccountID) ([]ed25519.PublicKey, error)
}

type Service struct {
	store   *store.InMemoryChallengeStore
	keys    KeySource
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTTL overrides the challenge lifetime, which also sets the eviction
// timer delay.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithNow overrides the clock used for expiry stamps and checks. Eviction
// timers still run on the wall clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(challenges *store.InMemoryChallengeStore, keys KeySource, opts ...Option) (*Service, error) {
	if challenges == nil {
		return nil, fmt.Errorf("challenge store is required")
	}
	if keys == nil {
		return nil, fmt.Errorf("key source is required")
	}

	svc := &Service{
		store: challenges,
		keys:  keys,
		ttl:   defaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue mints a fresh challenge for the account: a random 16-byte nonce,
// hex-encoded, wrapped with its deadline into a signed bearer token. The
// entry is stored under the full token string and scheduled for eviction one
// TTL later regardless of whether it gets consumed first.
func (s *Service) Issue(ctx context.Context, accountID id.AccountID) (string, error) {
	keys, err := s.keys.KeysFor(ctx, accountID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read key list")
	}
	if len(keys) == 0 {
		return "", dErrors.New(dErrors.CodeUnauthorized, "registration required")
	}

	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate nonce")
	}
	nonce := hex.EncodeToString(raw)
	expires := s.now().Add(s.ttl)

	tok, err := token.Sign(nonce, expires)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode challenge")
	}

	s.store.Put(ctx, tok, store.Challenge{Nonce: nonce, Expires: expires})
	s.scheduleEviction(tok)

	s.metrics.IncChallengesIssued()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "challenge issued",
			"account_id", accountID.String(),
			"nonce", nonce,
			"expires", expires,
		)
	}

	return tok, nil
}

// ValidateSignature recovers the challenge a presented signature belongs to
// and reports whether it is still live. The matched entry is deleted no
// matter the outcome: one verification attempt, successful or not, is all a
// challenge gets. Internal failures surface as false, never as an error.
func (s *Service) ValidateSignature(ctx context.Context, signed []byte, publicKey ed25519.PublicKey) bool {
	ch, found := s.store.ConsumeMatching(ctx, signed, publicKey)
	if !found {
		return false
	}

	if ch.Expires.Before(s.now()) {
		s.metrics.IncChallengesExpired()
		if s.logger != nil {
			s.logger.InfoContext(ctx, "challenge expired, removed from storage", "nonce", ch.Nonce)
		}
		return false
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "challenge consumed, removed from storage", "nonce", ch.Nonce)
	}
	return true
}

// scheduleEviction arranges for the entry to be dropped one TTL after
// issuance. The delete is idempotent, so racing a concurrent consumption of
// the same entry is harmless.
func (s *Service) scheduleEviction(tok string) {
	time.AfterFunc(s.ttl, func() {
		if s.store.Delete(context.Background(), tok) {
			s.metrics.IncChallengesEvicted()
		}
	})
}
