package entity

import (
	"time"

	"github.com/oksasatya/mailmerge/pkg/mailer"
)

// Mode is how a campaign was dispatched.
type Mode string

const (
	ModeTest   Mode = "test"
	ModeSingle Mode = "single"
	ModeBulk   Mode = "bulk"
)

// Campaign is one dispatch (test, single or bulk) together with its ordered results.
// It is the only persisted artifact of a send.
type Campaign struct {
	ID             string              `json:"id"`
	OperatorID     string              `json:"operator_id"`
	Mode           Mode                `json:"mode"`
	Subject        string              `json:"subject"`
	AttachmentName string              `json:"attachment_name,omitempty"`
	Sent           int                 `json:"sent"`
	Failed         int                 `json:"failed"`
	ExportURL      string              `json:"export_url,omitempty"`
	Results        []mailer.SendResult `json:"results,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	FinishedAt     time.Time           `json:"finished_at"`
}

// Tally recomputes Sent and Failed from Results.
func (c *Campaign) Tally() {
	c.Sent, c.Failed = mailer.CountOutcomes(c.Results)
}
