package mail

import (
	"context"
	"fmt"

	gomail "github.com/go-mail/mail"
)

// SMTPSender delivers mail through a plain SMTP relay
type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// NewSMTPSender creates an SMTP-backed sender
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{
		Host: host,
		Port: port,
		User: user,
		Pass: pass,
		From: from,
	}
}

// Send dispatches a plain-text message over SMTP
func (s *SMTPSender) Send(ctx context.Context, from, to, subject, body string) error {
	if from == "" {
		from = s.From
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
