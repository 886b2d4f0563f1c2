// Package audit captures security-relevant actions as structured events.
// Domain services emit events through a Publisher; sinks decide where they
// land. Keep the Event transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"log/slog"
	"time"

	id "biokey/pkg/domain"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp     time.Time
	AccountID     id.AccountID
	Action        Action
	TransactionID id.TransactionID
	Decision      string
	Reason        string
	RequestID     string
}

// Action names the audited operation.
type Action string

const (
	ActionKeyRegistered         Action = "key_registered"
	ActionValidationCodeIssued  Action = "validation_code_issued"
	ActionChallengeIssued       Action = "challenge_issued"
	ActionTransactionAuthorized Action = "transaction_authorized"
	ActionTransactionDenied     Action = "transaction_denied"
)

// Publisher emits audit events for security-relevant operations.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Emit publishes an event through the optional publisher and mirrors it to
// the optional logger. Both may be nil; emission is best-effort and never
// fails the calling operation.
func Emit(ctx context.Context, logger *slog.Logger, publisher Publisher, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if logger != nil {
		logger.InfoContext(ctx, "audit",
			"action", string(event.Action),
			"account_id", event.AccountID.String(),
			"transaction_id", event.TransactionID.String(),
			"decision", event.Decision,
			"reason", event.Reason,
		)
	}
	if publisher != nil {
		_ = publisher.Emit(ctx, event)
	}
}
