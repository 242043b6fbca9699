package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSMTP() *Config {
	return &Config{
		MailTransport: TransportSMTP,
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
		SMTPUser:      "mailer",
		SMTPPassword:  "secret",
		SenderName:    "Acme",
		SenderEmail:   "team@acme.test",
		AdminEmail:    "admin@acme.test",
		SendDelay:     500 * time.Millisecond,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	require.NoError(t, validSMTP().Validate())

	mg := validSMTP()
	mg.MailTransport = TransportMailgun
	mg.SMTPHost, mg.SMTPUser, mg.SMTPPassword = "", "", ""
	mg.MailgunDomain, mg.MailgunAPIKey = "mg.acme.test", "key-123"
	require.NoError(t, mg.Validate())
}

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	t.Parallel()

	err := (&Config{MailTransport: TransportSMTP, SMTPPort: 587}).Validate()
	require.Error(t, err)
	for _, key := range []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "SENDER_NAME", "SENDER_EMAIL", "ADMIN_EMAIL"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.SMTPPort = 0 }, "SMTP_PORT"},
		{"port too high", func(c *Config) { c.SMTPPort = 70000 }, "SMTP_PORT"},
		{"unknown transport", func(c *Config) { c.MailTransport = "pigeon" }, "MAIL_TRANSPORT"},
		{"negative delay", func(c *Config) { c.SendDelay = -time.Second }, "MAIL_SEND_DELAY"},
		{"blank sender", func(c *Config) { c.SenderEmail = "   " }, "SENDER_EMAIL"},
		{"mailgun without key", func(c *Config) { c.MailTransport = TransportMailgun; c.MailgunDomain = "mg.acme.test" }, "MAILGUN_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validSMTP()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MailSettings(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("MAIL_TRANSPORT", "SMTP")
	t.Setenv("MAIL_SEND_DELAY", "2s")
	t.Setenv("ADMIN_EMAIL", "admin@acme.test")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")

	c := Load()
	assert.Equal(t, "smtp.example.com", c.SMTPHost)
	assert.Equal(t, 465, c.SMTPPort)
	assert.Equal(t, TransportSMTP, c.MailTransport)
	assert.Equal(t, 2*time.Second, c.SendDelay)
	assert.Equal(t, "admin@acme.test", c.AdminEmail)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.CORSOrigins())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("MAIL_SEND_DELAY", "")
	t.Setenv("MAIL_EMAIL_COLUMN", "")

	c := Load()
	assert.Equal(t, 587, c.SMTPPort)
	assert.Equal(t, 500*time.Millisecond, c.SendDelay)
	assert.Equal(t, "email", c.EmailColumn)
}
