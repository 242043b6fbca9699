package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// ErrStartTLSUnavailable means the server offered no STARTTLS; the session is
// refused rather than continued in plaintext.
var ErrStartTLSUnavailable = errors.New("server does not offer STARTTLS")

// messageTimeout bounds one MAIL/RCPT/DATA transaction, attachment upload included.
const messageTimeout = 2 * time.Minute

// Session is an open, authenticated connection to a mail transport.
// A session is used for a whole batch and must be closed by whoever dialed it.
type Session interface {
	Send(ctx context.Context, msg *gomail.Message) error
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// SessionError reports that no session could be established (connection, TLS or
// authentication failure). No message of the batch was sent.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string { return "mail session: " + e.Err.Error() }

func (e *SessionError) Unwrap() error { return e.Err }

// IsSessionError reports whether err is, or wraps, a *SessionError.
func IsSessionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se)
}

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSConfig overrides the default (ServerName = Host, TLS 1.2+).
	TLSConfig *tls.Config
	// Timeout bounds connecting and the handshake; 10s when zero.
	Timeout time.Duration
}

// SMTPDialer dials SMTP submission servers: plain connection, mandatory STARTTLS
// upgrade, then username/password auth. Port 465 uses implicit TLS instead.
type SMTPDialer struct {
	cfg SMTPConfig
}

func NewSMTPDialer(cfg SMTPConfig) *SMTPDialer {
	if cfg.TLSConfig == nil {
		cfg.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPDialer{cfg: cfg}
}

func (s *SMTPDialer) Dial(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	c, conn, err := s.connect(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("smtp %s: %w", addr, err)
	}
	return &smtpSession{client: c, conn: conn, timeout: s.cfg.Timeout}, nil
}

func (s *SMTPDialer) connect(ctx context.Context, addr string) (*smtp.Client, net.Conn, error) {
	nd := &net.Dialer{Timeout: s.cfg.Timeout}
	var (
		conn net.Conn
		err  error
	)
	implicitTLS := s.cfg.Port == 465
	if implicitTLS {
		conn, err = (&tls.Dialer{NetDialer: nd, Config: s.cfg.TLSConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = nd.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, err
	}
	// the deadline covers greeting, STARTTLS and AUTH; it is lifted once the session is up
	_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := s.secure(c, implicitTLS); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return c, conn, nil
}

func (s *SMTPDialer) secure(c *smtp.Client, implicitTLS bool) error {
	if !implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return ErrStartTLSUnavailable
		}
		if err := c.StartTLS(s.cfg.TLSConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.cfg.Username == "" {
		return nil
	}
	if ok, _ := c.Extension("AUTH"); !ok {
		return errors.New("server does not offer AUTH")
	}
	if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

type smtpSession struct {
	client  *smtp.Client
	conn    net.Conn
	timeout time.Duration
}

// Send runs one MAIL/RCPT/DATA transaction. A rejected message is followed by
// RSET so the next recipient starts a clean transaction on the same session.
// Errors are the server's own replies.
func (s *smtpSession) Send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, to, err := envelope(msg)
	if err != nil {
		return err
	}
	_ = s.conn.SetDeadline(time.Now().Add(messageTimeout))
	if err := s.transmit(from, to, msg); err != nil {
		_ = s.client.Reset()
		return err
	}
	return nil
}

func (s *smtpSession) transmit(from string, to []string, msg *gomail.Message) error {
	if err := s.client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := s.client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := s.client.Data()
	if err != nil {
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *smtpSession) Close() error {
	_ = s.conn.SetDeadline(time.Now().Add(s.timeout))
	if err := s.client.Quit(); err != nil {
		return s.client.Close()
	}
	return nil
}

// envelope extracts the bare sender and recipient addresses from the headers.
func envelope(msg *gomail.Message) (string, []string, error) {
	from := msg.GetHeader("Sender")
	if len(from) == 0 {
		from = msg.GetHeader("From")
	}
	if len(from) == 0 {
		return "", nil, errors.New("message has no From header")
	}
	sender, err := mail.ParseAddress(from[0])
	if err != nil {
		return "", nil, fmt.Errorf("from: %w", err)
	}
	var to []string
	for _, field := range []string{"To", "Cc", "Bcc"} {
		for _, v := range msg.GetHeader(field) {
			addr, err := mail.ParseAddress(v)
			if err != nil {
				return "", nil, fmt.Errorf("%s: %w", field, err)
			}
			to = append(to, addr.Address)
		}
	}
	if len(to) == 0 {
		return "", nil, ErrNoRecipient
	}
	return sender.Address, to, nil
}
