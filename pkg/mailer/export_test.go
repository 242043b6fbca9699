package mailer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResultsCSV(t *testing.T) {
	t.Parallel()

	results := []SendResult{
		{Recipient: "ann@example.com", Outcome: Sent()},
		{Recipient: "bob@example.com", Outcome: Failed("550 5.1.1 user unknown, try later")},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"), "export starts with a UTF-8 BOM")
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\ufeff"), "\n"), "\n")
	assert.Equal(t, []string{
		"email,status",
		"ann@example.com,✅ sent",
		`bob@example.com,"❌ failed: 550 5.1.1 user unknown, try later"`,
	}, lines)
}

func TestWriteResultsCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, nil))
	assert.Equal(t, "\ufeffemail,status\n", buf.String())
}
