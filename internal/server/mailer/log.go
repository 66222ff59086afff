package mailer

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogSender drops messages after logging the recipient and subject. Bodies
// are never logged since they carry reset codes.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(ctx, "mail not delivered (log transport)", "to", msg.To, "subject", msg.Subject)
	return nil
}
