package mailer

import (
	"errors"
	"io"
	"mime"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("recipient address is empty")

// Builder assembles one message per recipient with a fixed sender identity.
type Builder struct {
	SenderName    string
	SenderAddress string
}

func NewBuilder(senderName, senderAddress string) *Builder {
	return &Builder{SenderName: senderName, SenderAddress: senderAddress}
}

// Build creates a UTF-8 message with an HTML body and, when att is not nil, a
// base64 attachment part. Non-ASCII subject and sender name are B-encoded.
// Building does no I/O besides reading att, whose position is restored.
func (b *Builder) Build(subject, htmlBody, to string, att *Attachment) (*gomail.Message, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, ErrNoRecipient
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"), gomail.SetEncoding(gomail.Base64))
	m.SetAddressHeader("From", b.SenderAddress, b.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if att != nil {
		data, err := att.Bytes()
		if err != nil {
			return nil, err
		}
		m.Attach(att.Name,
			gomail.SetHeader(map[string][]string{
				"Content-Type":        {att.ContentType()},
				"Content-Disposition": {mime.FormatMediaType("attachment", map[string]string{"filename": att.Name})},
			}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m, nil
}
