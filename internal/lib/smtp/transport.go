package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// Transport устанавливает соединение с SMTP-сервером из конфига.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect подключается, включает STARTTLS и проходит PLAIN-авторизацию.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Transport.Connect"
	log := t.log.With(sl.Op(op), slog.String("host", t.cfg.SMTPHost))

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort), dialTimeout)
	if err != nil {
		log.Error("failed to dial smtp server", sl.Err(err))
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	if err := client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			log.Error("smtp auth failed", sl.Err(err))
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}
	return client, nil
}

// Sender возвращает адрес отправителя.
func (t *Transport) Sender() string {
	return t.cfg.SMTPUser
}
