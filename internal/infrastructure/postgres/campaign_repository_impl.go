package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	"github.com/oksasatya/mailmerge/internal/domain/repository"
	"github.com/oksasatya/mailmerge/pkg/mailer"
)

type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Save writes the campaign row and its results in one transaction. Results keep
// their input order through the position column.
func (r *CampaignRepository) Save(ctx context.Context, c *entity.Campaign) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var operatorID any
	if c.OperatorID != "" {
		operatorID = c.OperatorID
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO campaigns (id, operator_id, mode, subject, attachment_name, sent, failed, export_url, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, operatorID, string(c.Mode), c.Subject, c.AttachmentName, c.Sent, c.Failed, c.ExportURL, c.CreatedAt, c.FinishedAt); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	if len(c.Results) > 0 {
		batch := &pgx.Batch{}
		for i, res := range c.Results {
			batch.Queue(`
				INSERT INTO send_results (campaign_id, position, recipient, status, reason)
				VALUES ($1, $2, $3, $4, $5)
			`, c.ID, i, res.Recipient, string(res.Outcome.Status), res.Outcome.Reason)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *CampaignRepository) SetExportURL(ctx context.Context, id, url string) error {
	res, err := r.pool.Exec(ctx, `UPDATE campaigns SET export_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CampaignRepository) Get(ctx context.Context, id string) (*entity.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(operator_id::text, ''), mode, subject, attachment_name, sent, failed, export_url, created_at, finished_at
		FROM campaigns
		WHERE id = $1
	`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT recipient, status, reason
		FROM send_results
		WHERE campaign_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var res mailer.SendResult
		var status string
		if err := rows.Scan(&res.Recipient, &status, &res.Outcome.Reason); err != nil {
			return nil, err
		}
		res.Outcome.Status = mailer.Status(status)
		c.Results = append(c.Results, res)
	}
	return c, rows.Err()
}

func (r *CampaignRepository) List(ctx context.Context, limit int) ([]entity.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(operator_id::text, ''), mode, subject, attachment_name, sent, failed, export_url, created_at, finished_at
		FROM campaigns
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Campaign, 0, limit)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCampaign(row pgx.Row) (*entity.Campaign, error) {
	c := &entity.Campaign{}
	var mode string
	var finished *time.Time
	if err := row.Scan(&c.ID, &c.OperatorID, &mode, &c.Subject, &c.AttachmentName, &c.Sent, &c.Failed, &c.ExportURL, &c.CreatedAt, &finished); err != nil {
		return nil, err
	}
	c.Mode = entity.Mode(mode)
	if finished != nil {
		c.FinishedAt = *finished
	}
	return c, nil
}

var _ repository.CampaignRepository = (*CampaignRepository)(nil)
