package tabs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const tabColumns = `id, url, url_key, title, favicon, group_id, note, tags,
	deleted_at, original_group_id, inbox_at, cleaned_by_wind, status,
	created_at, updated_at, last_visited, sync_status`

// CreateOrUpdate upserts a tab. A url_key conflict keeps the existing id
// and created_at; an id conflict (the tab's URL was edited) rewrites the
// URL columns too.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, t *models.Tab) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `INSERT INTO tabs (` + tabColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_key) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			favicon = excluded.favicon,
			group_id = excluded.group_id,
			note = excluded.note,
			tags = excluded.tags,
			deleted_at = excluded.deleted_at,
			original_group_id = excluded.original_group_id,
			inbox_at = excluded.inbox_at,
			cleaned_by_wind = excluded.cleaned_by_wind,
			status = excluded.status,
			updated_at = excluded.updated_at,
			last_visited = excluded.last_visited,
			sync_status = excluded.sync_status
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			url_key = excluded.url_key,
			title = excluded.title,
			favicon = excluded.favicon,
			group_id = excluded.group_id,
			note = excluded.note,
			tags = excluded.tags,
			deleted_at = excluded.deleted_at,
			original_group_id = excluded.original_group_id,
			inbox_at = excluded.inbox_at,
			cleaned_by_wind = excluded.cleaned_by_wind,
			status = excluded.status,
			updated_at = excluded.updated_at,
			last_visited = excluded.last_visited,
			sync_status = excluded.sync_status
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.URL, models.URLKey(t.URL), t.Title, t.Favicon, t.GroupID,
		t.Note, tags, t.DeletedAt, t.OriginalGroupID, t.InboxAt,
		t.CleanedByWind, t.Status, t.CreatedAt, t.UpdatedAt, t.LastVisited,
		t.SyncStatus)
	if err != nil {
		return fmt.Errorf("failed to upsert tab: %w", err)
	}
	return nil
}

// GetAll lists tabs newest first, narrowed by the filters.
func (r *SQLiteRepository) GetAll(ctx context.Context, f models.TabFilters) ([]models.Tab, error) {
	var conds []string
	var args []any

	if !f.IncludeArchived {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.InboxOnly {
		conds = append(conds, "group_id = ''")
	}
	if f.SyncStatus != "" {
		conds = append(conds, "sync_status = ?")
		args = append(args, f.SyncStatus)
	}
	if f.Query != "" {
		conds = append(conds, "(lower(title) LIKE ? OR lower(url) LIKE ? OR lower(note) LIKE ?)")
		pattern := "%" + strings.ToLower(f.Query) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + tabColumns + ` FROM tabs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tabs: %w", err)
	}
	defer rows.Close()

	var result []models.Tab
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tab)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a tab by its identifier, or models.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Tab, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tabColumns+` FROM tabs WHERE id = ?`, id)
	return scanOne(row)
}

// GetByURL returns a tab by its normalized URL, or models.ErrNotFound.
func (r *SQLiteRepository) GetByURL(ctx context.Context, url string) (*models.Tab, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tabColumns+` FROM tabs WHERE url_key = ?`, models.URLKey(url))
	return scanOne(row)
}

// DeleteByID physically removes a tab. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tabs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tab: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteByURLKeys physically removes every tab whose normalized URL is in keys.
func (r *SQLiteRepository) DeleteByURLKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM tabs WHERE url_key IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete tabs: %w", err)
	}
	return nil
}

// MarkAllSynced flips every pending tab to synced.
func (r *SQLiteRepository) MarkAllSynced(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tabs SET sync_status = ? WHERE sync_status != ?`,
		models.SyncStatusSynced, models.SyncStatusSynced)
	if err != nil {
		return fmt.Errorf("failed to mark tabs synced: %w", err)
	}
	return nil
}

// Stats counts active tabs by sync status and by group.
func (r *SQLiteRepository) Stats(ctx context.Context) (*models.TabStats, error) {
	stats := &models.TabStats{ByGroup: make(map[string]int)}

	rows, err := r.db.QueryContext(ctx,
		`SELECT sync_status, COUNT(*) FROM tabs WHERE deleted_at IS NULL GROUP BY sync_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tabs by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.Total += n
		switch status {
		case models.SyncStatusSynced:
			stats.Synced = n
		case models.SyncStatusPending:
			stats.Pending = n
		case models.SyncStatusError:
			stats.Error = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := r.db.QueryContext(ctx,
		`SELECT group_id, COUNT(*) FROM tabs WHERE deleted_at IS NULL GROUP BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tabs by group: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var groupID string
		var n int
		if err := groupRows.Scan(&groupID, &n); err != nil {
			return nil, err
		}
		stats.ByGroup[groupID] = n
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Tab, error) {
	tab, err := scanTab(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return tab, nil
}

func scanTab(row rowScanner) (*models.Tab, error) {
	var t models.Tab
	var urlKey, tags string
	if err := row.Scan(&t.ID, &t.URL, &urlKey, &t.Title, &t.Favicon,
		&t.GroupID, &t.Note, &tags, &t.DeletedAt, &t.OriginalGroupID,
		&t.InboxAt, &t.CleanedByWind, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		&t.LastVisited, &t.SyncStatus); err != nil {
		return nil, err
	}
	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	t.Tags = decoded
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
