package mailer

// Status is the tag of an Outcome.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Outcome is the tagged result of one delivery attempt: sent, or failed with a reason.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Sent builds a successful outcome.
func Sent() Outcome { return Outcome{Status: StatusSent} }

// Failed builds a failed outcome carrying the raw error text.
func Failed(reason string) Outcome { return Outcome{Status: StatusFailed, Reason: reason} }

// OK reports whether the message was accepted by the server.
func (o Outcome) OK() bool { return o.Status == StatusSent }

// String renders the outcome the way it appears in result exports.
func (o Outcome) String() string {
	if o.OK() {
		return "✅ sent"
	}
	return "❌ failed: " + o.Reason
}

// SendResult is the per-recipient record of a dispatch.
type SendResult struct {
	Recipient string  `json:"recipient"`
	Outcome   Outcome `json:"outcome"`
}

// CountOutcomes returns how many results were sent and how many failed.
func CountOutcomes(results []SendResult) (sent, failed int) {
	for _, r := range results {
		if r.Outcome.OK() {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}
