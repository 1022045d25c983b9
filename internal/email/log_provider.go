package email

import (
	"context"

	"studyzone_backend/internal/logger"
)

// LogProvider writes messages to the log instead of sending them. Used in development.
// The body is not logged since it may carry a reset link.
type LogProvider struct{}

func (LogProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxInfo(ctx, "email suppressed (log provider)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

func (LogProvider) Validate() error { return nil }
