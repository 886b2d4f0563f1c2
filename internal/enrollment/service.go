// Package enrollment manages the set of device public keys bound to the
// account. The first key registers unconditionally; every later key must be
// accompanied by the account's freshest validation code.
package enrollment

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"

	"biokey/internal/platform/metrics"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
	"biokey/pkg/platform/audit"
	"biokey/pkg/platform/sentinel"
)

// KeyStore persists the ordered per-account key list.
type KeyStore interface {
	Append(ctx context.Context, accountID id.AccountID, key ed25519.PublicKey) error
	List(ctx context.Context, accountID id.AccountID) ([]ed25519.PublicKey, error)
}

// CodeRedeemer redeems a presented validation code against the newest pending
// one, consuming it on match.
type CodeRedeemer interface {
	ConsumeIfMatches(ctx context.Context, accountID id.AccountID, presented int) (bool, error)
}

type Service struct {
	store          KeyStore
	codes          CodeRedeemer
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func New(store KeyStore, codes CodeRedeemer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("key store is required")
	}
	if codes == nil {
		return nil, fmt.Errorf("code redeemer is required")
	}

	svc := &Service{store: store, codes: codes}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register binds a public key to the account. validateCode is zero when the
// client supplied none; it is ignored for the bootstrap (first key) case and
// required for every key after that. The matched code is consumed.
func (s *Service) Register(ctx context.Context, accountID id.AccountID, key ed25519.PublicKey, validateCode int) error {
	if len(key) == 0 {
		return dErrors.New(dErrors.CodeMissingInput, "public key is not present")
	}
	if len(key) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeMissingInput, "public key must be 32 bytes")
	}

	existing, err := s.store.List(ctx, accountID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read key list")
	}

	// Duplicate detection precedes the code gate so a rejected duplicate does
	// not burn the pending validation code.
	for _, k := range existing {
		if bytes.Equal(k, key) {
			return dErrors.New(dErrors.CodeConflict, "key already registered")
		}
	}

	if len(existing) > 0 {
		if validateCode == 0 {
			return dErrors.New(dErrors.CodeUnauthorized, "validate code required")
		}
		ok, err := s.codes.ConsumeIfMatches(ctx, accountID, validateCode)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem validate code")
		}
		if !ok {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid validate code")
		}
	}

	if err := s.store.Append(ctx, accountID, key); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "key already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store key")
	}

	s.metrics.IncKeysRegistered()
	audit.Emit(ctx, s.logger, s.auditPublisher, audit.Event{
		AccountID: accountID,
		Action:    audit.ActionKeyRegistered,
	})

	return nil
}

// KeysFor returns the account's registered keys in registration order. An
// empty slice signals that registration is still required.
func (s *Service) KeysFor(ctx context.Context, accountID id.AccountID) ([]ed25519.PublicKey, error) {
	keys, err := s.store.List(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read key list")
	}
	return keys, nil
}
