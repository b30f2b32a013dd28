package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/spec-kit/grievance-service/internal/config"
)

// Mailer abstracts outbound message delivery.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// OtpBody renders the one-time-code message sent for all OTP flows.
func OtpBody(heading, code string, ttlMinutes int) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif;">
          <h2>%s</h2>
          <p>Your OTP is:</p>
          <h1 style="letter-spacing: 4px;">%s</h1>
          <p>This OTP is valid for <b>%d minutes</b>.</p>
          <p>If you did not request this, please ignore.</p>
        </div>`, heading, code, ttlMinutes)
}
