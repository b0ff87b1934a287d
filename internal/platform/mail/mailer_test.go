package mail

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

func TestMailerBuildsMessageWithAttachment(t *testing.T) {
	m := NewMailer(Config{Host: "127.0.0.1", Port: 1025, From: "billing@mycoledger.local"})
	var captured *email.Email
	var capturedAddr string
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		captured = e
		capturedAddr = addr
		require.Nil(t, auth)
		return nil
	}

	err := m.Send(Message{
		To:      []string{"acme@example.com"},
		Subject: "Invoice INV-1",
		Body:    "Please find attached.",
		Attachments: []Attachment{
			{Filename: "INV-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:1025", capturedAddr)
	require.Equal(t, "billing@mycoledger.local", captured.From)
	require.Len(t, captured.Attachments, 1)
	require.Equal(t, "INV-1.pdf", captured.Attachments[0].Filename)

	raw, err := captured.Bytes()
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "Invoice INV-1"))
}

func TestMailerRequiresRecipient(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 25})
	require.Error(t, m.Send(Message{Subject: "x"}))
}
