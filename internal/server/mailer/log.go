package mailer

import (
	"context"

	"github.com/dmitrijs2005/verixa/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. Meant for
// local development: the body, which carries the verification link, is only
// emitted at debug level.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info(ctx, "email queued", "to", msg.To, "subject", msg.Subject)
	m.log.Debug(ctx, "email body", "to", msg.To, "body", msg.Body)
	return nil
}
