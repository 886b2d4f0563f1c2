// Package validation issues and redeems the short numeric one-time codes that
// serve as the non-cryptographic authorization proof. Codes queue up per
// account; only the most recently issued one is ever redeemable.
package validation

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"biokey/internal/platform/metrics"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
	"biokey/pkg/platform/audit"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Store persists pending validation codes in issuance order.
type Store interface {
	Append(ctx context.Context, accountID id.AccountID, code int) error
	ConsumeLast(ctx context.Context, accountID id.AccountID, presented int) (bool, error)
}

// Sender delivers an issued code to the account owner.
type Sender interface {
	Send(ctx context.Context, email string, code int) error
}

type Service struct {
	store          Store
	sender         Sender
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

func WithSender(sender Sender) Option {
	return func(s *Service) { s.sender = sender }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("code store is required")
	}

	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue generates a uniformly random six-digit code, queues it for the
// account, and hands it to the sender. Issuance always succeeds as long as
// the store does; there is no cap on pending codes.
func (s *Service) Issue(ctx context.Context, accountID id.AccountID) (int, error) {
	code, err := randomCode()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate validation code")
	}

	if err := s.store.Append(ctx, accountID, code); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue validation code")
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, accountID.String(), code); err != nil {
			// Delivery is best-effort; the code is queued either way.
			if s.logger != nil {
				s.logger.WarnContext(ctx, "validation code delivery failed",
					"account_id", accountID.String(),
					"error", err.Error(),
				)
			}
		}
	}

	s.metrics.IncValidationCodesIssued()
	audit.Emit(ctx, s.logger, s.auditPublisher, audit.Event{
		AccountID: accountID,
		Action:    audit.ActionValidationCodeIssued,
	})

	return code, nil
}

// ConsumeIfMatches redeems presented against the newest pending code for the
// account. On match the code is removed and can never match again; on
// mismatch the queue is left untouched. Superseded codes are unredeemable
// even if the newer code is never used.
func (s *Service) ConsumeIfMatches(ctx context.Context, accountID id.AccountID, presented int) (bool, error) {
	ok, err := s.store.ConsumeLast(ctx, accountID, presented)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem validation code")
	}
	return ok, nil
}

// randomCode draws uniformly from [100000, 999999].
func randomCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + codeMin, nil
}
