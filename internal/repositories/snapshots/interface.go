package snapshots

import (
	"context"

	"github.com/tabdav/tabdav/internal/models"
)

// Repository stores the sync baseline and the sync bookkeeping record.
// The snapshot is the remote document as it looked after the last
// successful sync; its absence marks a cold start.
type Repository interface {
	// SaveSnapshot stores the merged document blob as the new baseline.
	SaveSnapshot(ctx context.Context, data []byte, savedAt int64) error

	// LoadSnapshot returns the baseline blob. found is false when no sync
	// has completed yet.
	LoadSnapshot(ctx context.Context) (data []byte, found bool, err error)

	// DeleteSnapshot drops the baseline, forcing the next sync to run the
	// cold-start path.
	DeleteSnapshot(ctx context.Context) error

	// SaveMetadata stores the sync bookkeeping record.
	SaveMetadata(ctx context.Context, md *models.SyncMetadata) error

	// GetMetadata returns the sync bookkeeping record, or a zero value if
	// none was ever saved.
	GetMetadata(ctx context.Context) (*models.SyncMetadata, error)
}
