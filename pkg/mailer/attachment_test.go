package mailer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment_BytesRestoresPosition(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader([]byte("0123456789"))
	_, err := src.Seek(4, io.SeekStart)
	require.NoError(t, err)

	att := &Attachment{Name: "digits.txt", Source: src}
	for i := 0; i < 3; i++ {
		data, err := att.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "0123456789", string(data))
	}

	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
}

func TestAttachment_NoSource(t *testing.T) {
	t.Parallel()

	_, err := (&Attachment{Name: "x.pdf"}).Bytes()
	require.ErrorIs(t, err, ErrNoAttachmentSource)

	var nilAtt *Attachment
	_, err = nilAtt.Bytes()
	require.ErrorIs(t, err, ErrNoAttachmentSource)
}

func TestAttachment_ContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/pdf", NewAttachment("invoice.pdf", nil).ContentType())
}
