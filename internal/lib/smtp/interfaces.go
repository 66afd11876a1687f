// Package smtp отправляет письма через SMTP-сервер с STARTTLS.
package smtp

import "io"

// Client — подмножество *smtp.Client, которое использует Mailer.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает авторизованную SMTP-сессию.
type Dialer interface {
	Connect() (Client, error)
	Sender() string
}
