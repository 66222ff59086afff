// Package mailer delivers outbound messages such as password reset codes.
//
// Three transports are available: SMTP for real delivery, an S3 outbox that
// stores each message as an .eml object for inspection in dev and staging,
// and a log transport that records only who would have received what.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

// Message is a plain-text mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the Sender selected by cfg.MailTransport.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (Sender, error) {
	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword), nil
	case config.MailTransportS3:
		return NewS3Outbox(ctx, cfg)
	case config.MailTransportLog:
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q: %w", cfg.MailTransport, common.ErrorValidation)
	}
}

// Bytes renders msg as an RFC 5322 message with CRLF line endings.
func (m Message) Bytes(date time.Time) []byte {
	var b bytes.Buffer

	id, err := common.MakeRandHexString(16)
	if err != nil {
		id = fmt.Sprintf("%d", date.UnixNano())
	}

	writeHeader(&b, "From", m.From)
	writeHeader(&b, "To", m.To)
	writeHeader(&b, "Subject", m.Subject)
	writeHeader(&b, "Date", date.Format(time.RFC1123Z))
	writeHeader(&b, "Message-ID", fmt.Sprintf("<%s@%s>", id, domainOf(m.From)))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", "text/plain; charset=UTF-8")
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, name, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func domainOf(addr string) string {
	if _, d, ok := strings.Cut(addr, "@"); ok && d != "" {
		return strings.TrimSuffix(d, ">")
	}
	return "localhost"
}
