package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/merge"
	"github.com/tabdav/tabdav/internal/models"
	"github.com/tabdav/tabdav/internal/repositories/groups"
	"github.com/tabdav/tabdav/internal/repositories/tabs"
)

// DataIO exports and imports the whole collection as a sync document, the
// same JSON shape the remote stores. An exported file can be imported on
// another machine or pushed to a fresh remote.
type DataIO struct {
	db  *sql.DB
	log logging.Logger
	now func() int64
}

// NewDataIO returns a DataIO bound to the local database.
func NewDataIO(db *sql.DB, log logging.Logger) *DataIO {
	return &DataIO{db: db, log: log, now: nowMillis}
}

// Export writes every tab and group, archived tabs included, as an
// indented sync document.
func (d *DataIO) Export(ctx context.Context, w io.Writer) error {
	doc := merge.NewDocument(d.now())

	allTabs, err := tabs.NewSQLiteRepository(d.db).GetAll(ctx, models.TabFilters{IncludeArchived: true})
	if err != nil {
		return fmt.Errorf("failed to read tabs: %w", err)
	}
	for _, tab := range allTabs {
		doc.Tabs[models.URLKey(tab.URL)] = merge.TabRecordFrom(tab)
	}

	allGroups, err := groups.NewSQLiteRepository(d.db).GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read groups: %w", err)
	}
	for _, group := range allGroups {
		doc.Groups[group.ID] = merge.GroupRecordFrom(group)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Import reads a sync document and merges its contents into the local
// store. A record only replaces an existing one when it is newer; imported
// rows are marked pending so the next sync pushes them. Import never
// removes local data.
func (d *DataIO) Import(ctx context.Context, r io.Reader) (tabsImported, groupsImported int, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read input: %w", err)
	}
	doc, err := merge.ParseDocument(data)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse document: %w", err)
	}

	err = dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)

		for _, record := range doc.Groups {
			existing, err := groupRepo.GetByID(ctx, record.ID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}
			if existing != nil && existing.UpdatedAt >= record.UpdatedAt {
				continue
			}
			group := record.Group()
			if err := groupRepo.CreateOrUpdate(ctx, &group); err != nil {
				return err
			}
			groupsImported++
		}
		for _, record := range doc.Tabs {
			existing, err := tabRepo.GetByURL(ctx, record.URL)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}
			if existing != nil && existing.UpdatedAt >= record.UpdatedAt {
				continue
			}
			tab := record.Tab()
			tab.SyncStatus = models.SyncStatusPending
			if err := tabRepo.CreateOrUpdate(ctx, &tab); err != nil {
				return err
			}
			tabsImported++
		}
		return groupRepo.RefreshTabCounts(ctx)
	})
	if err != nil {
		return 0, 0, err
	}

	d.log.Info(ctx, "import finished", "tabs", tabsImported, "groups", groupsImported)
	return tabsImported, groupsImported, nil
}
