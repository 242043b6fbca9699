package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"gopkg.in/gomail.v2"
)

var ErrMailgunNotConfigured = errors.New("mailgun domain and api key are required")

// Mailgun is a Dialer that hands the built MIME message to the Mailgun API
// instead of an SMTP server.
type Mailgun struct {
	Domain string
	APIKey string
}

func NewMailgun(domain, apiKey string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey}
}

// Dial creates the API client. There is no connection to keep open, so the
// only way this fails is missing configuration.
func (m *Mailgun) Dial(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Domain == "" || m.APIKey == "" {
		return nil, ErrMailgunNotConfigured
	}
	return &mailgunSession{client: mg.NewMailgun(m.Domain, m.APIKey)}, nil
}

type mailgunSession struct {
	client *mg.MailgunImpl
}

// Send posts msg as a MIME message to the addresses of its To header.
func (s *mailgunSession) Send(ctx context.Context, msg *gomail.Message) error {
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	mime := s.client.NewMIMEMessage(io.NopCloser(&buf), msg.GetHeader("To")...)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := s.client.Send(c, mime)
	return err
}

func (s *mailgunSession) Close() error { return nil }
