package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// implicitTLSPort is the SMTPS port, where TLS starts before the greeting.
const implicitTLSPort = 465

// Test seams.
var (
	sendMail = smtp.SendMail
	dialTLS  = func(addr string, cfg *tls.Config) (net.Conn, error) {
		return tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, cfg)
	}
)

type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	now      func() time.Time
}

func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		now:      time.Now,
	}
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// auth is nil when no credentials are configured, e.g. a local relay.
func (s *SMTPSender) auth() smtp.Auth {
	if s.user == "" && s.password == "" {
		return nil
	}
	return smtp.PlainAuth("", s.user, s.password, s.host)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := msg.Bytes(s.now())

	if s.port == implicitTLSPort {
		return s.sendImplicitTLS(ctx, msg, raw)
	}

	if err := sendMail(s.addr(), s.auth(), msg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sendImplicitTLS runs the whole SMTP conversation under ctx's deadline.
func (s *SMTPSender) sendImplicitTLS(ctx context.Context, msg Message, raw []byte) error {
	conn, err := dialTLS(s.addr(), &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("smtp deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if a := s.auth(); a != nil {
		if err := c.Auth(a); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	return c.Quit()
}
