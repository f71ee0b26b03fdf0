// Package mailer delivers certificates over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/certforge/certforge/internal/config"
)

// Mailer sends certificate emails through a single SMTP account.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New builds a Mailer from SMTP settings. Callers should check
// cfg.Enabled() before constructing one.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendCertificate emails one PNG attachment to a recipient. gomail has no
// context support, so cancellation is only honored between sends.
func (m *Mailer) SendCertificate(ctx context.Context, to, recipientName, eventTitle string, png []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your certificate for %s", eventTitle))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nCongratulations on completing %s. Your certificate is attached.\n",
		recipientName, eventTitle))
	msg.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(png))
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}),
	)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}
