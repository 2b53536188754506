// Package mailer sends transactional mail: password reset tokens and
// messages from the public contact form.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"darkroom/internal/lib/logger/sl"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ContactTo is where contact form submissions are delivered.
	ContactTo string
	// ResetURLBase is prefixed to reset tokens in outgoing mail,
	// e.g. https://example.com/reset-password.
	ResetURLBase string
}

type Mailer struct {
	log    *slog.Logger
	dialer *gomail.Dialer
	cfg    Config
}

func New(log *slog.Logger, cfg Config) *Mailer {
	return &Mailer{
		log:    log,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, token string) error {
	const op = "mailer.Mailer.SendPasswordReset"

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset link: %s/%s\n\n"+
			"The link expires in one hour. If you did not request this, ignore this mail.",
		m.cfg.ResetURLBase, token,
	))

	if err := m.send(ctx, msg); err != nil {
		m.log.Error("failed to send reset mail", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	m.log.Info("reset mail sent", slog.String("op", op), slog.String("to", email))
	return nil
}

func (m *Mailer) SendContactMessage(ctx context.Context, name, email, subject, body string) error {
	const op = "mailer.Mailer.SendContactMessage"

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.ContactTo)
	msg.SetHeader("Reply-To", email)
	msg.SetHeader("Subject", fmt.Sprintf("[contact] %s", subject))
	msg.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s", name, email, body))

	if err := m.send(ctx, msg); err != nil {
		m.log.Error("failed to send contact mail", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogOnly is used when no SMTP server is configured: outgoing mail is
// written to the log instead of being delivered.
type LogOnly struct {
	Log *slog.Logger
}

func (l LogOnly) SendPasswordReset(_ context.Context, email, token string) error {
	l.Log.Info("password reset mail (smtp disabled)",
		slog.String("to", email),
		slog.String("token", token),
	)
	return nil
}

func (l LogOnly) SendContactMessage(_ context.Context, name, email, subject, body string) error {
	l.Log.Info("contact message (smtp disabled)",
		slog.String("from", name),
		slog.String("email", email),
		slog.String("subject", subject),
		slog.Int("body_len", len(body)),
	)
	return nil
}

// send runs the SMTP dial in a goroutine so a hung server is bounded
// by the caller's context rather than the net defaults.
func (m *Mailer) send(ctx context.Context, msg *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
