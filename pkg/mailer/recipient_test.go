package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "✅ sent", Sent().String())
	assert.Equal(t, "❌ failed: 550 no such user", Failed("550 no such user").String())
	assert.True(t, Sent().OK())
	assert.False(t, Failed("x").OK())
}

func TestCountOutcomes(t *testing.T) {
	t.Parallel()

	sent, failed := CountOutcomes([]SendResult{
		{Recipient: "a@x.io", Outcome: Sent()},
		{Recipient: "b@x.io", Outcome: Failed("boom")},
		{Recipient: "c@x.io", Outcome: Sent()},
	})
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
}

func TestRow(t *testing.T) {
	t.Parallel()

	r := Row{{Key: "email", Value: "a@x.io"}, {Key: "name", Value: "Ann"}}
	assert.Equal(t, "Ann", r.Get("name"))
	assert.Equal(t, "", r.Get("city"))
	assert.True(t, r.Has("email"))
	assert.False(t, r.Has("city"))
	assert.Equal(t, []string{"email", "name"}, r.Keys())
}

func TestRecipientSet(t *testing.T) {
	t.Parallel()

	single := RecipientSet{Address: "a@x.io"}
	assert.False(t, single.IsBulk())
	assert.Equal(t, 1, single.Len())
	assert.Equal(t, 0, RecipientSet{Address: "  "}.Len())

	bulk := RecipientSet{Rows: []Row{{{Key: "email", Value: "a@x.io"}}, {{Key: "email", Value: "b@x.io"}}}, EmailColumn: "email"}
	assert.True(t, bulk.IsBulk())
	assert.Equal(t, 2, bulk.Len())
}

func TestLooksLikeEmail(t *testing.T) {
	t.Parallel()

	for addr, want := range map[string]bool{
		"ann@example.com": true,
		"a@b.c":           true,
		"ann.example.com": false,
		"ann@localhost":   false,
		"":                false,
	} {
		assert.Equal(t, want, LooksLikeEmail(addr), addr)
	}
}
