// Package mail sends transactional email such as password reset links.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Someone asked to reset the password for your FoodAI account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in {{.TTL}}. If you did not ask for this, ignore this email.</p>`))

// Dialer is the part of gomail.Dialer the sender needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// NewSMTPSenderWithDialer lets callers substitute the transport.
func NewSMTPSenderWithDialer(d Dialer, from string) *SMTPSender {
	return &SMTPSender{dialer: d, from: from}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, link string, ttl time.Duration) error {
	m, err := s.resetMessage(to, link, ttl)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) resetMessage(to, link string, ttl time.Duration) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct {
		Link string
		TTL  time.Duration
	}{link, ttl}); err != nil {
		return nil, fmt.Errorf("render reset mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your FoodAI password")
	m.SetBody("text/plain", fmt.Sprintf("Reset your password: %s\nThe link expires in %s.", link, ttl))
	m.AddAlternative("text/html", body.String())
	return m, nil
}

// LogSender writes mail to the log instead of sending it. Used when no SMTP
// relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, link string, ttl time.Duration) error {
	s.logger.InfoContext(ctx, "password reset mail", "component", "mail.Log", "to", to, "link", link, "ttl", ttl)
	return nil
}
