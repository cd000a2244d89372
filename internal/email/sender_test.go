package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nazotronic/Tourify/internal/config"
)

func TestNewSMTPSender_FallsBackToLogging(t *testing.T) {
	cfg := &config.Config{SmtpFromAddress: "noreply@tourify.example.com"}
	sender := NewSMTPSender(cfg)

	_, ok := sender.(*LoggingSender)
	assert.True(t, ok)

	// Logging sender never fails
	err := sender.Send(context.Background(), []string{"user@example.com"}, "Hi", []byte("body"))
	assert.NoError(t, err)
}

func TestNewSMTPSender_UsesSMTPWhenConfigured(t *testing.T) {
	cfg := &config.Config{
		SmtpHost:        "smtp.example.com",
		SmtpPort:        587,
		SmtpFromAddress: "noreply@tourify.example.com",
	}
	sender := NewSMTPSender(cfg)

	s, ok := sender.(*SMTPSender)
	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com:587", s.addr)
}

func TestComposeMessage(t *testing.T) {
	msg := string(ComposeMessage(
		"noreply@tourify.example.com",
		[]string{"a@example.com", "b@example.com"},
		"Booking received",
		"We got your request.",
	))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@tourify.example.com\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Booking received\r\n")
	assert.Contains(t, msg, "\r\n\r\nWe got your request.\r\n")
}
