package utils

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"crewmanager/config"
)

// Mailer delivers Email-channel messages through SMTP. Services depend on
// the interface so tests can substitute a fake.
type Mailer interface {
	// Send delivers one message and returns a provider reference id.
	Send(toEmail, toName, subject, body string) (string, error)
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewMailer builds the SMTP mailer from configuration. Returns nil when no
// SMTP host is configured; callers treat a nil mailer as delivery failure
// for the Email channel.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(toEmail, toName, subject, body string) (string, error) {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	ref := fmt.Sprintf("<%d.%s@crewmanager>", time.Now().UnixNano(), m.cfg.FromEmail)
	msg.SetHeader("Message-ID", ref)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return "", err
	}
	return ref, nil
}
