// Package services implements the application logic on top of the
// repositories: tab and group management, the sync orchestrator, watch
// mode and data import/export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/models"
	"github.com/tabdav/tabdav/internal/repositories/groups"
	"github.com/tabdav/tabdav/internal/repositories/tabs"
)

// TabService manages the tab collection.
type TabService struct {
	db  *sql.DB
	log logging.Logger
	now func() int64
}

// NewTabService returns a TabService bound to the local database.
func NewTabService(db *sql.DB, log logging.Logger) *TabService {
	return &TabService{db: db, log: log, now: nowMillis}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Add saves a page. URLs are deduplicated case-insensitively: saving a page
// that already exists updates it in place, and saving an archived page
// restores it instead of creating a duplicate.
func (s *TabService) Add(ctx context.Context, in models.CreateTabInput) (*models.Tab, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}

	var result *models.Tab
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)

		if in.GroupID != "" {
			if _, err := groupRepo.GetByID(ctx, in.GroupID); err != nil {
				return fmt.Errorf("group %s: %w", in.GroupID, err)
			}
		}

		now := s.now()
		existing, err := tabRepo.GetByURL(ctx, url)
		switch {
		case err == nil:
			result = s.reviveTab(existing, in, now)
		case errors.Is(err, models.ErrNotFound):
			result = s.newTab(in, url, now)
		default:
			return err
		}

		if err := tabRepo.CreateOrUpdate(ctx, result); err != nil {
			return err
		}
		return groupRepo.RefreshTabCounts(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "tab saved", "id", result.ID, "url", result.URL)
	return result, nil
}

func (s *TabService) newTab(in models.CreateTabInput, url string, now int64) *models.Tab {
	tab := &models.Tab{
		ID:         uuid.NewString(),
		URL:        url,
		Title:      in.Title,
		Favicon:    in.Favicon,
		GroupID:    in.GroupID,
		Note:       in.Note,
		Tags:       in.Tags,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.SyncStatusPending,
	}
	if tab.Title == "" {
		tab.Title = url
	}
	if tab.GroupID == "" {
		tab.InboxAt = &now
	}
	return tab
}

// reviveTab refreshes an existing row for the same URL. An archived tab
// comes back from history.
func (s *TabService) reviveTab(tab *models.Tab, in models.CreateTabInput, now int64) *models.Tab {
	if tab.Archived() {
		tab.DeletedAt = nil
		tab.CleanedByWind = false
		tab.Status = ""
		if in.GroupID == "" {
			tab.GroupID = tab.OriginalGroupID
		}
		tab.OriginalGroupID = ""
	}
	if in.Title != "" {
		tab.Title = in.Title
	}
	if in.Favicon != "" {
		tab.Favicon = in.Favicon
	}
	if in.GroupID != "" {
		tab.GroupID = in.GroupID
	}
	if in.Note != "" {
		tab.Note = in.Note
	}
	if len(in.Tags) > 0 {
		tab.Tags = in.Tags
	}
	if tab.GroupID == "" && tab.InboxAt == nil {
		tab.InboxAt = &now
	}
	tab.LastVisited = &now
	tab.UpdatedAt = now
	tab.SyncStatus = models.SyncStatusPending
	return tab
}

// Update modifies a tab; nil input fields are left unchanged.
func (s *TabService) Update(ctx context.Context, in models.UpdateTabInput) (*models.Tab, error) {
	var result *models.Tab
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)

		tab, err := tabRepo.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}

		if in.URL != nil {
			tab.URL = strings.TrimSpace(*in.URL)
		}
		if in.Title != nil {
			tab.Title = *in.Title
		}
		if in.Favicon != nil {
			tab.Favicon = *in.Favicon
		}
		if in.GroupID != nil {
			if *in.GroupID != "" {
				if _, err := groupRepo.GetByID(ctx, *in.GroupID); err != nil {
					return fmt.Errorf("group %s: %w", *in.GroupID, err)
				}
			}
			tab.GroupID = *in.GroupID
		}
		if in.Note != nil {
			tab.Note = *in.Note
		}
		if in.Tags != nil {
			tab.Tags = in.Tags
		}
		tab.UpdatedAt = s.now()
		tab.SyncStatus = models.SyncStatusPending

		if err := tabRepo.CreateOrUpdate(ctx, tab); err != nil {
			return err
		}
		result = tab
		return groupRepo.RefreshTabCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Move assigns a tab to a group. An empty groupID moves it to the inbox.
func (s *TabService) Move(ctx context.Context, id, groupID string) (*models.Tab, error) {
	var result *models.Tab
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)

		tab, err := tabRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if groupID != "" {
			if _, err := groupRepo.GetByID(ctx, groupID); err != nil {
				return fmt.Errorf("group %s: %w", groupID, err)
			}
		}

		now := s.now()
		tab.GroupID = groupID
		if groupID == "" {
			tab.InboxAt = &now
		} else {
			tab.InboxAt = nil
		}
		tab.UpdatedAt = now
		tab.SyncStatus = models.SyncStatusPending

		if err := tabRepo.CreateOrUpdate(ctx, tab); err != nil {
			return err
		}
		result = tab
		return groupRepo.RefreshTabCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Archive soft-deletes a tab to history. The tab keeps syncing so the
// archive state reaches other devices; its group membership is remembered
// for Restore.
func (s *TabService) Archive(ctx context.Context, id string) (*models.Tab, error) {
	return s.archive(ctx, id, false)
}

func (s *TabService) archive(ctx context.Context, id string, byCleanup bool) (*models.Tab, error) {
	var result *models.Tab
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)

		tab, err := tabRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tab.Archived() {
			result = tab
			return nil
		}

		now := s.now()
		tab.DeletedAt = &now
		tab.OriginalGroupID = tab.GroupID
		tab.GroupID = ""
		tab.InboxAt = nil
		tab.CleanedByWind = byCleanup
		tab.UpdatedAt = now
		tab.SyncStatus = models.SyncStatusPending

		if err := tabRepo.CreateOrUpdate(ctx, tab); err != nil {
			return err
		}
		result = tab
		return groups.NewSQLiteRepository(tx).RefreshTabCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Restore brings an archived tab back, into its original group when that
// group still exists.
func (s *TabService) Restore(ctx context.Context, id string) (*models.Tab, error) {
	var result *models.Tab
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)

		tab, err := tabRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !tab.Archived() {
			result = tab
			return nil
		}

		now := s.now()
		tab.DeletedAt = nil
		tab.CleanedByWind = false
		tab.Status = ""
		tab.GroupID = ""
		if tab.OriginalGroupID != "" {
			if _, err := groupRepo.GetByID(ctx, tab.OriginalGroupID); err == nil {
				tab.GroupID = tab.OriginalGroupID
			}
		}
		tab.OriginalGroupID = ""
		if tab.GroupID == "" {
			tab.InboxAt = &now
		}
		tab.UpdatedAt = now
		tab.SyncStatus = models.SyncStatusPending

		if err := tabRepo.CreateOrUpdate(ctx, tab); err != nil {
			return err
		}
		result = tab
		return groupRepo.RefreshTabCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a tab for good. The next sync propagates the deletion.
func (s *TabService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tabs.NewSQLiteRepository(tx).DeleteByID(ctx, id); err != nil {
			return err
		}
		return groups.NewSQLiteRepository(tx).RefreshTabCounts(ctx)
	})
}

// List returns tabs matching the filters, newest first.
func (s *TabService) List(ctx context.Context, filters models.TabFilters) ([]models.Tab, error) {
	return tabs.NewSQLiteRepository(s.db).GetAll(ctx, filters)
}

// Get returns a single tab by id.
func (s *TabService) Get(ctx context.Context, id string) (*models.Tab, error) {
	return tabs.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// Stats returns sync-status and per-group counts for active tabs.
func (s *TabService) Stats(ctx context.Context) (*models.TabStats, error) {
	return tabs.NewSQLiteRepository(s.db).Stats(ctx)
}

// Cleanup purges archived tabs older than maxAge. Purged rows vanish from
// the local store only; the merge engine turns that into a remote deletion
// on the next sync. A zero maxAge disables the purge.
func (s *TabService) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now() - maxAge.Milliseconds()

	var purged int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)

		all, err := tabRepo.GetAll(ctx, models.TabFilters{IncludeArchived: true})
		if err != nil {
			return err
		}
		var keys []string
		for _, tab := range all {
			if tab.DeletedAt != nil && *tab.DeletedAt < cutoff {
				keys = append(keys, models.URLKey(tab.URL))
			}
		}
		if err := tabRepo.DeleteByURLKeys(ctx, keys); err != nil {
			return err
		}
		purged = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		s.log.Info(ctx, "purged archived tabs", "count", purged, "max_age", maxAge)
	}
	return purged, nil
}
