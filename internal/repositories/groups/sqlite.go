package groups

import (
	"context"
	"database/sql"
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

const groupColumns = `id, name, color, list_type, tab_count, created_at, updated_at`

// CreateOrUpdate upserts a group by id. tab_count is kept: it is derived
// and owned by RefreshTabCounts.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, g *models.Group) error {
	query := `INSERT INTO groups (` + groupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			list_type = excluded.list_type,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.Name, g.Color, g.ListType, g.TabCount, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateName
		}
		return fmt.Errorf("failed to upsert group: %w", err)
	}
	return nil
}

// GetAll lists groups ordered by name.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select groups: %w", err)
	}
	defer rows.Close()

	var result []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Color, &g.ListType,
			&g.TabCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a group by id, or models.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
}

// GetByName returns a group by its unique name, or models.ErrNotFound.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE name = ?`, name)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.Color, &g.ListType,
		&g.TabCount, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return &g, nil
}

// DeleteByID physically removes a group. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
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

// DeleteByIDs physically removes every group whose id is in ids.
func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete groups: %w", err)
	}
	return nil
}

// RefreshTabCounts recomputes tab_count from the active tabs referencing
// each group.
func (r *SQLiteRepository) RefreshTabCounts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE groups SET tab_count = (
			SELECT COUNT(*) FROM tabs
			WHERE tabs.group_id = groups.id AND tabs.deleted_at IS NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to refresh tab counts: %w", err)
	}
	return nil
}

// Count returns the number of groups.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: groups.name")
}
