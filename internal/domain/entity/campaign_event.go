package entity

import (
	"time"

	"github.com/oksasatya/mailmerge/pkg/mailer"
)

// CampaignEvent is the JSON payload put on the RabbitMQ events queue after a
// campaign finishes. The results indexer consumes it.
type CampaignEvent struct {
	CampaignID string              `json:"campaign_id"`
	OperatorID string              `json:"operator_id,omitempty"`
	Mode       Mode                `json:"mode"`
	Subject    string              `json:"subject"`
	Attachment string              `json:"attachment,omitempty"`
	Sent       int                 `json:"sent"`
	Failed     int                 `json:"failed"`
	Results    []mailer.SendResult `json:"results"`
	FinishedAt time.Time           `json:"finished_at"`
}

// NewCampaignEvent snapshots a finished campaign.
func NewCampaignEvent(c *Campaign) CampaignEvent {
	return CampaignEvent{
		CampaignID: c.ID,
		OperatorID: c.OperatorID,
		Mode:       c.Mode,
		Subject:    c.Subject,
		Attachment: c.AttachmentName,
		Sent:       c.Sent,
		Failed:     c.Failed,
		Results:    c.Results,
		FinishedAt: c.FinishedAt,
	}
}
