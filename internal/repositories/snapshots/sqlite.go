package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/models"
)

const (
	keySnapshot = "sync:snapshot"
	keyMetadata = "sync:metadata"
)

// SQLiteRepository implements Repository over the kv table using a DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveSnapshot stores the merged document blob as the new baseline.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, data []byte, savedAt int64) error {
	return r.put(ctx, keySnapshot, data, savedAt)
}

// LoadSnapshot returns the baseline blob, or found=false on a cold start.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, keySnapshot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, true, nil
}

// DeleteSnapshot drops the baseline.
func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, keySnapshot); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// SaveMetadata stores the sync bookkeeping record as JSON.
func (r *SQLiteRepository) SaveMetadata(ctx context.Context, md *models.SyncMetadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to encode sync metadata: %w", err)
	}
	return r.put(ctx, keyMetadata, data, time.Now().UnixMilli())
}

// GetMetadata returns the sync bookkeeping record, zero-valued when none
// was ever saved.
func (r *SQLiteRepository) GetMetadata(ctx context.Context) (*models.SyncMetadata, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, keyMetadata).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.SyncMetadata{State: models.SyncStateIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync metadata: %w", err)
	}

	var md models.SyncMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("failed to decode sync metadata: %w", err)
	}
	return &md, nil
}

func (r *SQLiteRepository) put(ctx context.Context, key string, data []byte, updatedAt int64) error {
	query := `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, data, updatedAt); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}
