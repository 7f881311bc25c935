package report

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/meko-christian/mail-sweeper/internal/config"
)

// Sender delivers a composed message. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails summaries to the configured report recipients.
type Mailer struct {
	from   string
	to     []string
	sender Sender
}

// NewMailer configures the SMTP dialer from cfg.
func NewMailer(cfg config.Report) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)

	switch cfg.SMTP.Security {
	case "ssl":
		dialer.SSL = true
	case "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTP.Server}
	}

	return NewMailerWithSender(cfg, dialer)
}

// NewMailerWithSender uses a custom Sender, e.g. in tests.
func NewMailerWithSender(cfg config.Report, sender Sender) *Mailer {
	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}
	return &Mailer{from: from, to: cfg.To, sender: sender}
}

// Send mails the rendered summary as plain text.
func (m *Mailer) Send(s *Summary) error {
	var body strings.Builder
	if err := Write(&body, s); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", "[mail-sweeper] "+s.Title())
	msg.SetBody("text/plain", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	slog.Info("Report mailed", "recipients", len(m.to), "run_id", s.RunID)
	return nil
}
