package groups

import (
	"context"

	"github.com/tabdav/tabdav/internal/models"
)

// Repository describes storage operations for Group objects.
type Repository interface {
	// CreateOrUpdate upserts a group by id.
	CreateOrUpdate(ctx context.Context, group *models.Group) error

	// GetAll lists groups ordered by name.
	GetAll(ctx context.Context) ([]models.Group, error)

	// GetByID returns a group by its identifier.
	GetByID(ctx context.Context, id string) (*models.Group, error)

	// GetByName returns a group by its unique name.
	GetByName(ctx context.Context, name string) (*models.Group, error)

	// DeleteByID physically removes a group.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByIDs physically removes every group whose id is in ids. Used
	// to apply merge deletions.
	DeleteByIDs(ctx context.Context, ids []string) error

	// RefreshTabCounts recomputes every group's tab_count from the active
	// tabs that reference it.
	RefreshTabCounts(ctx context.Context) error

	// Count returns the number of groups.
	Count(ctx context.Context) (int, error)
}
