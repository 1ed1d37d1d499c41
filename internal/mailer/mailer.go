package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail over plain SMTP auth
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	body := &strings.Builder{}
	fmt.Fprintf(body, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(body, "To: %s\r\n", msg.To)
	fmt.Fprintf(body, "Subject: %s\r\n", msg.Subject)
	body.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML != "" {
		body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		body.WriteString(msg.HTML)
	} else {
		body.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		body.WriteString(msg.Text)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(body.String()))
	if err != nil {
		return fmt.Errorf("error while sending mail to %s. Err: %w", msg.To, err)
	}

	return nil
}
