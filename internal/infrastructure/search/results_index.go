package search

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// ResultDoc is the Elasticsearch document for one recipient of one campaign.
type ResultDoc struct {
	CampaignID string    `json:"campaign_id"`
	OperatorID string    `json:"operator_id,omitempty"`
	Mode       string    `json:"mode"`
	Subject    string    `json:"subject"`
	Position   int       `json:"position"`
	Recipient  string    `json:"recipient"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// ResultDocs flattens an event into one document per result, keyed by campaign
// and position so redelivered events overwrite instead of duplicating.
func ResultDocs(ev entity.CampaignEvent) map[string]ResultDoc {
	docs := make(map[string]ResultDoc, len(ev.Results))
	for i, r := range ev.Results {
		docs[fmt.Sprintf("%s-%d", ev.CampaignID, i)] = ResultDoc{
			CampaignID: ev.CampaignID,
			OperatorID: ev.OperatorID,
			Mode:       string(ev.Mode),
			Subject:    ev.Subject,
			Position:   i,
			Recipient:  r.Recipient,
			Status:     string(r.Outcome.Status),
			Reason:     r.Outcome.Reason,
			FinishedAt: ev.FinishedAt,
		}
	}
	return docs
}

// ResultsIndex reads and writes send results in one index.
type ResultsIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewResultsIndex(es *elasticsearch.Client, index string) *ResultsIndex {
	return &ResultsIndex{ES: es, Index: index}
}

// IndexEvent writes every result of the event. It stops at the first failure.
func (x *ResultsIndex) IndexEvent(ctx context.Context, ev entity.CampaignEvent) error {
	for id, doc := range ResultDocs(ev) {
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := helpers.IndexDocument(c, x.ES, x.Index, id, doc)
		cancel()
		if err != nil {
			return fmt.Errorf("index %s: %w", id, err)
		}
	}
	return nil
}

// Search matches q against recipient, subject and failure reason, newest first.
func (x *ResultsIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return helpers.SearchSources(ctx, x.ES, x.Index, Query(q, size))
}

// Query builds the search body used by Search.
func Query(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"recipient^2", "subject", "reason"},
			},
		},
		"sort": []any{map[string]any{"finished_at": map[string]any{"order": "desc"}}},
		"size": size,
	}
}
