package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
)

var ErrNotFound = errors.New("not found")

// CampaignRepository stores dispatched campaigns and their per-recipient results.
type CampaignRepository interface {
	// Save persists the campaign and all of its results in input order.
	Save(ctx context.Context, c *entity.Campaign) error
	// SetExportURL records where the campaign's result export was archived.
	SetExportURL(ctx context.Context, id, url string) error
	// Get loads a campaign with its results; ErrNotFound when missing.
	Get(ctx context.Context, id string) (*entity.Campaign, error)
	// List returns the most recent campaigns without results.
	List(ctx context.Context, limit int) ([]entity.Campaign, error)
}
