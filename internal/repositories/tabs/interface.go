package tabs

import (
	"context"

	"github.com/tabdav/tabdav/internal/models"
)

// Repository describes storage operations for Tab objects.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate upserts a tab. The conflict key is the normalized URL,
	// so the same page saved twice converges on one row keeping its
	// original id.
	CreateOrUpdate(ctx context.Context, tab *models.Tab) error

	// GetAll lists tabs, newest first, narrowed by the filters.
	GetAll(ctx context.Context, filters models.TabFilters) ([]models.Tab, error)

	// GetByID returns a tab by its identifier.
	GetByID(ctx context.Context, id string) (*models.Tab, error)

	// GetByURL returns a tab by its normalized URL.
	GetByURL(ctx context.Context, url string) (*models.Tab, error)

	// DeleteByID physically removes a tab.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByURLKeys physically removes every tab whose normalized URL is
	// in keys. Used to apply merge deletions.
	DeleteByURLKeys(ctx context.Context, keys []string) error

	// MarkAllSynced flips every pending tab to synced after a successful
	// sync run.
	MarkAllSynced(ctx context.Context) error

	// Stats returns counts by sync status and by group for active tabs.
	Stats(ctx context.Context) (*models.TabStats, error)
}
