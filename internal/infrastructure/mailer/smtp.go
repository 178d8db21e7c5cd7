package mailer

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"CitationWatch/internal/config"
	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
)

// Mailer delivers alert digests over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

var _ ports.Dispatcher = (*Mailer)(nil)

func New(cfg config.MailConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
	}
}

// Dispatch sends the digest as a single plain-text message. The caller treats
// any error as a failed run, so nothing is marked notified on failure.
func (m *Mailer) Dispatch(ctx context.Context, digest domain.Digest) error {
	if m == nil {
		return fmt.Errorf("mailer is nil")
	}
	if m.host == "" || m.port == 0 || m.from == "" || m.to == "" {
		return fmt.Errorf("mailer misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", m.to)
	message.SetHeader("Subject", digest.Subject)
	message.SetBody("text/plain", digest.Body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("send digest mail: %w", err)
	}

	return nil
}
