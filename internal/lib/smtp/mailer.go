package smtp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

// Mailer формирует text/plain письмо и отправляет его через Dialer.
type Mailer struct {
	dialer Dialer
	log    *slog.Logger
}

// NewMailer создает Mailer.
func NewMailer(dialer Dialer, log *slog.Logger) *Mailer {
	return &Mailer{dialer: dialer, log: log}
}

// Send отправляет одно письмо адресату to.
func (m *Mailer) Send(to, subject, body string) error {
	const op = "smtp.Mailer.Send"
	from := m.dialer.Sender()

	client, err := m.dialer.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			m.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%s: rcpt %s: %w", op, to, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write([]byte(compose(from, to, subject, body))); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}

	m.log.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func compose(from, to, subject, body string) string {
	return strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")
}
