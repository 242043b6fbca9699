package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var ErrNoAttachmentSource = errors.New("attachment has no source")

// Attachment is a file sent along with every message of a dispatch.
// Source is read in full for each message and its position is put back afterwards,
// so one upload can be attached to any number of recipients.
type Attachment struct {
	Name   string
	Source io.ReadSeeker
}

// NewAttachment wraps in-memory content.
func NewAttachment(name string, content []byte) *Attachment {
	return &Attachment{Name: name, Source: bytes.NewReader(content)}
}

// ContentType is the MIME type inferred from Name.
func (a *Attachment) ContentType() string {
	return ContentTypeFor(a.Name)
}

// Bytes reads the whole source from the beginning and restores the previous read position.
func (a *Attachment) Bytes() (data []byte, err error) {
	if a == nil || a.Source == nil {
		return nil, ErrNoAttachmentSource
	}
	pos, err := a.Source.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: tell: %w", a.Name, err)
	}
	defer func() {
		if _, serr := a.Source.Seek(pos, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("attachment %s: rewind: %w", a.Name, serr)
		}
	}()
	if _, err := a.Source.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("attachment %s: seek: %w", a.Name, err)
	}
	data, err = io.ReadAll(a.Source)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: read: %w", a.Name, err)
	}
	return data, nil
}
