// Package mailer delivers outbound email. Delivery is asynchronous and
// fire-and-forget: the password-reset flow must report success to the client
// whether or not the message ever leaves the process.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/taskflow/taskflow-api/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use by the dispatcher workers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender implements Sender over plain SMTP with optional AUTH.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender creates a Sender for the configured SMTP relay.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: auth,
		from: cfg.FromAddress,
	}
}

// Ensure SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)

// Send implements Sender over SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// LogSender is the development fallback used when no SMTP relay is
// configured: it logs that a message would have been sent.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_sender"))}
}

// Ensure LogSender implements Sender
var _ Sender = (*LogSender)(nil)

// Send implements Sender by logging instead of delivering.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email delivery skipped (no SMTP configured)",
		slog.String("subject", msg.Subject))
	return nil
}
