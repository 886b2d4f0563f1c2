// Package authorize decides whether a transaction is authorized, combining
// the registered key list, the challenge store, and the validation code
// queue. Exactly one proof path runs per request; a signed challenge wins
// when both proofs are supplied.
package authorize

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"biokey/internal/platform/metrics"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
	"biokey/pkg/platform/audit"
)

// Request carries one transaction authorization attempt. It is never stored.
// TransactionID labels the attempt for auditing only.
type Request struct {
	TransactionID   id.TransactionID
	SignedChallenge []byte
	ValidateCode    int
}

// KeySource reports the account's registered keys in registration order.
type KeySource interface {
	KeysFor(ctx context.Context, accountID id.AccountID) ([]ed25519.PublicKey, error)
}

// ChallengeValidator consumes and checks a presented signed challenge.
type ChallengeValidator interface {
	ValidateSignature(ctx context.Context, signed []byte, publicKey ed25519.PublicKey) bool
}

// CodeRedeemer redeems a presented validation code, consuming it on match.
type CodeRedeemer interface {
	ConsumeIfMatches(ctx context.Context, accountID id.AccountID, presented int) (bool, error)
}

type Service struct {
	keys           KeySource
	challenges     ChallengeValidator
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

func New(keys KeySource, challenges ChallengeValidator, codes CodeRedeemer, opts ...Option) (*Service, error) {
	if keys == nil {
		return nil, fmt.Errorf("key source is required")
	}
	if challenges == nil {
		return nil, fmt.Errorf("challenge validator is required")
	}
	if codes == nil {
		return nil, fmt.Errorf("code redeemer is required")
	}

	svc := &Service{keys: keys, challenges: challenges, codes: codes}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Authorize returns the boolean authorization decision for one transaction.
// Errors cover malformed requests (missing transaction ID, unregistered
// account, no proof at all); a well-formed but failed proof is (false, nil).
func (s *Service) Authorize(ctx context.Context, accountID id.AccountID, req Request) (bool, error) {
	if req.TransactionID.IsNil() {
		return false, dErrors.New(dErrors.CodeMissingInput, "transaction id is required")
	}

	// A request with no proof at all is malformed no matter the registration
	// state; it gets 400, not a denial.
	if len(req.SignedChallenge) == 0 && req.ValidateCode == 0 {
		return false, dErrors.New(dErrors.CodeBadRequest, "no proof supplied")
	}

	keys, err := s.keys.KeysFor(ctx, accountID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read key list")
	}
	if len(keys) == 0 {
		return false, dErrors.New(dErrors.CodeUnauthorized, "user not registered")
	}

	if len(req.SignedChallenge) > 0 {
		granted := false
		// Try keys in registration order. The first ValidateSignature call
		// that finds a matching challenge consumes it, so later keys only
		// ever rescan what remains in the store.
		for _, key := range keys {
			if s.challenges.ValidateSignature(ctx, req.SignedChallenge, key) {
				granted = true
				break
			}
		}
		s.record(ctx, accountID, req.TransactionID, "challenge", granted)
		return granted, nil
	}

	granted, err := s.codes.ConsumeIfMatches(ctx, accountID, req.ValidateCode)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem validate code")
	}
	s.record(ctx, accountID, req.TransactionID, "validate_code", granted)
	return granted, nil
}

func (s *Service) record(ctx context.Context, accountID id.AccountID, txID id.TransactionID, proof string, granted bool) {
	outcome := "denied"
	action := audit.ActionTransactionDenied
	decision := "deny"
	if granted {
		outcome = "authorized"
		action = audit.ActionTransactionAuthorized
		decision = "allow"
	}

	s.metrics.IncAuthorization(proof, outcome)
	audit.Emit(ctx, s.logger, s.auditPublisher, audit.Event{
		AccountID:     accountID,
		Action:        action,
		TransactionID: txID,
		Decision:      decision,
		Reason:        proof,
	})
}
