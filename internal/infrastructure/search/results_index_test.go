package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	"github.com/oksasatya/mailmerge/pkg/mailer"
)

func TestResultDocs(t *testing.T) {
	t.Parallel()

	finished := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	docs := ResultDocs(entity.CampaignEvent{
		CampaignID: "c-1",
		OperatorID: "op-1",
		Mode:       entity.ModeBulk,
		Subject:    "Launch",
		FinishedAt: finished,
		Results: []mailer.SendResult{
			{Recipient: "ann@x.io", Outcome: mailer.Sent()},
			{Recipient: "bob@x.io", Outcome: mailer.Failed("550 no such user")},
		},
	})

	require.Len(t, docs, 2)
	assert.Equal(t, ResultDoc{
		CampaignID: "c-1", OperatorID: "op-1", Mode: "bulk", Subject: "Launch",
		Position: 1, Recipient: "bob@x.io", Status: "failed", Reason: "550 no such user",
		FinishedAt: finished,
	}, docs["c-1-1"])
	assert.Equal(t, "sent", docs["c-1-0"].Status)
}

func TestResultDocs_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ResultDocs(entity.CampaignEvent{CampaignID: "c-1"}))
}

func TestQuery(t *testing.T) {
	t.Parallel()

	q := Query("bob", 5)
	assert.Equal(t, 5, q["size"])
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "bob", mm["query"])
	assert.Equal(t, []string{"recipient^2", "subject", "reason"}, mm["fields"])
}
