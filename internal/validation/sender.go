package validation

import (
	"context"
	"log/slog"

	"biokey/pkg/email"
)

// LogSender is the default code delivery path: it writes the code to the
// service log instead of sending real mail. Real delivery is out of scope;
// this keeps the flow observable during development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, address string, code int) error {
	first, _ := email.DeriveNameFromEmail(address)
	s.logger.InfoContext(ctx, "validation code issued",
		"recipient", address,
		"recipient_name", first,
		"code", code,
	)
	return nil
}
