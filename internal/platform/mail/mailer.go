// Package mail sends transactional emails with file attachments over SMTP.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message describes a single outgoing email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

// Mailer wraps SMTP configuration for sending emails.
type Mailer struct {
	cfg  Config
	addr string
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewMailer constructs a Mailer.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Send implements Sender.
func (m *Mailer) Send(msg Message) error {
	if m == nil {
		return errors.New("mailer: not configured")
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: recipient required")
	}
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	for _, att := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(att.Data), att.Filename, att.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", att.Filename, err)
		}
	}
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(e, m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
