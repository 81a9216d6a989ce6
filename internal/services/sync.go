package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/tabdav/tabdav/internal/config"
	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/merge"
	"github.com/tabdav/tabdav/internal/models"
	"github.com/tabdav/tabdav/internal/remote"
	"github.com/tabdav/tabdav/internal/repositories/groups"
	"github.com/tabdav/tabdav/internal/repositories/snapshots"
	"github.com/tabdav/tabdav/internal/repositories/tabs"
)

// SyncService reconciles the local store with the remote document.
//
// One run: export local state, load the snapshot baseline, download the
// remote document, merge the three, repair referential integrity, upload
// the merged document, then apply it locally together with the new
// snapshot in a single transaction. If that final transaction fails the
// old snapshot survives, so the next run simply redoes the merge.
type SyncService struct {
	db      *sql.DB
	store   remote.Store
	log     logging.Logger
	now     func() int64
	syncing atomic.Bool
}

// NewSyncService returns a SyncService. store may be nil when no remote is
// configured; Sync then fails fast with models.ErrNotConfigured.
func NewSyncService(db *sql.DB, store remote.Store, log logging.Logger) *SyncService {
	return &SyncService{db: db, store: store, log: log, now: nowMillis}
}

// IsConfigured reports whether a remote store is wired up.
func (s *SyncService) IsConfigured() bool {
	return s.store != nil
}

// TestConnection verifies connectivity and credentials against the remote.
func (s *SyncService) TestConnection(ctx context.Context) error {
	if s.store == nil {
		return models.ErrNotConfigured
	}
	return s.store.Ping(ctx)
}

// Status returns the persisted sync bookkeeping record.
func (s *SyncService) Status(ctx context.Context) (*models.SyncMetadata, error) {
	return snapshots.NewSQLiteRepository(s.db).GetMetadata(ctx)
}

// Sync runs one synchronization. It always returns a result: failures are
// reported through Success and Error rather than an error return, so watch
// mode can keep ticking. Concurrent calls are rejected, not queued.
func (s *SyncService) Sync(ctx context.Context) *models.SyncResult {
	result := &models.SyncResult{Timestamp: s.now()}

	if s.store == nil {
		result.Error = models.ErrNotConfigured.Error()
		return result
	}
	if !s.syncing.CompareAndSwap(false, true) {
		result.Error = models.ErrSyncInProgress.Error()
		return result
	}
	defer s.syncing.Store(false)

	local, err := s.exportLocal(ctx)
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("failed to export local state: %w", err))
	}

	snapshot, hasSnapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return s.fail(ctx, result, err)
	}

	remoteDoc, remoteFound, err := s.downloadRemote(ctx)
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("failed to download remote document: %w", err))
	}

	groupsRes, tabsRes := s.merge(ctx, local, snapshot, remoteDoc, hasSnapshot, remoteFound)

	dropped, repointed := merge.ResolveGroupNameCollisions(groupsRes.Merged, tabsRes.Merged)
	if len(dropped) > 0 {
		s.log.Warn(ctx, "resolved duplicate group names", "dropped", len(dropped))
		groupsRes.DeletedFromLocal = append(groupsRes.DeletedFromLocal, dropped...)
		groupsRes.DeletedFromRemote = append(groupsRes.DeletedFromRemote, dropped...)
	}
	// A repoint is an edit: it must outrank the stale records other devices
	// still hold, or their next merge resurrects the dropped group id.
	if len(repointed) > 0 {
		now := s.now()
		for _, key := range repointed {
			record := tabsRes.Merged[key]
			record.UpdatedAt = now
			tabsRes.Merged[key] = record
		}
	}

	repaired := append(repointed, merge.RepairOrphans(tabsRes.Merged, groupsRes.Merged)...)
	result.IntegrityRepairs = len(repaired)
	if len(repaired) > 0 {
		s.log.Warn(ctx, "repaired group references", "count", len(repaired))
	}

	mergedDoc := merge.NewDocument(s.now())
	mergedDoc.Groups = groupsRes.Merged
	mergedDoc.Tabs = tabsRes.Merged
	encoded, err := mergedDoc.Encode()
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("failed to encode merged document: %w", err))
	}

	dirty := len(groupsRes.AddedToRemote)+len(groupsRes.DeletedFromRemote)+
		len(tabsRes.AddedToRemote)+len(tabsRes.DeletedFromRemote)+
		len(repaired) > 0
	if dirty || !remoteFound {
		if err := s.store.Mkdir(ctx); err != nil {
			return s.fail(ctx, result, fmt.Errorf("failed to create remote directory: %w", err))
		}
		if err := s.store.Upload(ctx, config.RemoteFileName, encoded); err != nil {
			return s.fail(ctx, result, fmt.Errorf("failed to upload document: %w", err))
		}
	}

	if err := s.applyLocal(ctx, mergedDoc, encoded, groupsRes, tabsRes, repaired); err != nil {
		return s.fail(ctx, result, fmt.Errorf("failed to apply merged state: %w", err))
	}

	result.Success = true
	result.AddedToLocal = len(tabsRes.AddedToLocal) + len(groupsRes.AddedToLocal)
	result.DeletedFromLocal = len(tabsRes.DeletedFromLocal) + len(groupsRes.DeletedFromLocal)
	result.AddedToRemote = len(tabsRes.AddedToRemote) + len(groupsRes.AddedToRemote)
	result.DeletedFromRemote = len(tabsRes.DeletedFromRemote) + len(groupsRes.DeletedFromRemote)
	result.Conflicts = tabsRes.Conflicts + groupsRes.Conflicts

	s.log.Info(ctx, "sync finished",
		"added_to_local", result.AddedToLocal,
		"deleted_from_local", result.DeletedFromLocal,
		"added_to_remote", result.AddedToRemote,
		"deleted_from_remote", result.DeletedFromRemote,
		"conflicts", result.Conflicts,
		"repairs", result.IntegrityRepairs)
	return result
}

// exportLocal builds the local document from every stored row, archived
// tabs included: the archive flag is data that has to reach other devices.
func (s *SyncService) exportLocal(ctx context.Context) (*merge.Document, error) {
	doc := merge.NewDocument(s.now())

	allTabs, err := tabs.NewSQLiteRepository(s.db).GetAll(ctx, models.TabFilters{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	for _, tab := range allTabs {
		doc.Tabs[models.URLKey(tab.URL)] = merge.TabRecordFrom(tab)
	}

	allGroups, err := groups.NewSQLiteRepository(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, group := range allGroups {
		doc.Groups[group.ID] = merge.GroupRecordFrom(group)
	}
	return doc, nil
}

// loadSnapshot loads the merge baseline. A corrupt snapshot is treated as
// absent: the next merge becomes a cold-start union, which can resurrect
// but never lose data.
func (s *SyncService) loadSnapshot(ctx context.Context) (*merge.Document, bool, error) {
	data, found, err := snapshots.NewSQLiteRepository(s.db).LoadSnapshot(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	doc, err := merge.ParseDocument(data)
	if err != nil {
		s.log.Warn(ctx, "snapshot is corrupt, falling back to cold-start merge", "error", err)
		return nil, false, nil
	}
	return doc, true, nil
}

// downloadRemote fetches the remote document. A malformed document is
// logged and treated as absent rather than aborting the run: the merge
// then takes a cold-start or push-local path that cannot read the garbage
// as deletions, and the following upload replaces it with well-formed
// state.
func (s *SyncService) downloadRemote(ctx context.Context) (*merge.Document, bool, error) {
	data, found, err := s.store.Download(ctx, config.RemoteFileName)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	doc, err := merge.ParseDocument(data)
	if err != nil {
		s.log.Warn(ctx, "remote document is malformed, treating as absent", "error", err)
		return nil, false, nil
	}
	return doc, true, nil
}

// merge picks the merge strategy per run.
//
// Without a snapshot there is no baseline to infer deletions from, so the
// collections are unioned (which degenerates to a plain push or pull when
// one side is empty). With a snapshot but no usable remote document the
// remote was wiped or corrupted; local state is pushed back without
// inferring any deletions.
func (s *SyncService) merge(ctx context.Context, local, snapshot, remoteDoc *merge.Document, hasSnapshot, remoteFound bool) (merge.Result[merge.GroupRecord], merge.Result[merge.TabRecord]) {
	switch {
	case !hasSnapshot:
		if remoteFound {
			s.log.Info(ctx, "no snapshot baseline, running cold-start union merge")
		} else {
			s.log.Info(ctx, "fresh remote, pushing local state")
		}
		if remoteDoc == nil {
			remoteDoc = merge.NewDocument(0)
		}
		return merge.Union(local.Groups, remoteDoc.Groups), merge.Union(local.Tabs, remoteDoc.Tabs)

	case !remoteFound:
		s.log.Warn(ctx, "remote document missing or unreadable, re-uploading local state")
		return pushAll(local.Groups), pushAll(local.Tabs)

	default:
		return merge.ThreeWay(local.Groups, snapshot.Groups, remoteDoc.Groups),
			merge.ThreeWay(local.Tabs, snapshot.Tabs, remoteDoc.Tabs)
	}
}

func pushAll[T merge.Stamped](local map[string]T) merge.Result[T] {
	res := merge.Result[T]{Merged: make(map[string]T, len(local))}
	for key, value := range local {
		res.Merged[key] = value
		res.AddedToRemote = append(res.AddedToRemote, key)
	}
	return res
}

// applyLocal converges the local store to the merged document and persists
// the new snapshot in the same transaction. Either both land or neither
// does; a half-applied sync cannot produce a bogus baseline.
func (s *SyncService) applyLocal(ctx context.Context, doc *merge.Document, encoded []byte, groupsRes merge.Result[merge.GroupRecord], tabsRes merge.Result[merge.TabRecord], repairedTabs []string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tabRepo := tabs.NewSQLiteRepository(tx)
		groupRepo := groups.NewSQLiteRepository(tx)
		snapRepo := snapshots.NewSQLiteRepository(tx)

		// Deletes run before upserts: a dropped duplicate group must be
		// gone before the surviving group with the same name lands.
		if err := groupRepo.DeleteByIDs(ctx, groupsRes.DeletedFromLocal); err != nil {
			return err
		}
		for _, id := range groupsRes.AddedToLocal {
			record, ok := doc.Groups[id]
			if !ok {
				continue
			}
			group := record.Group()
			if err := groupRepo.CreateOrUpdate(ctx, &group); err != nil {
				return err
			}
		}

		if err := tabRepo.DeleteByURLKeys(ctx, tabsRes.DeletedFromLocal); err != nil {
			return err
		}
		for _, key := range append(tabsRes.AddedToLocal, repairedTabs...) {
			record, ok := doc.Tabs[key]
			if !ok {
				continue
			}
			tab := record.Tab()
			if err := tabRepo.CreateOrUpdate(ctx, &tab); err != nil {
				return err
			}
		}

		if err := tabRepo.MarkAllSynced(ctx); err != nil {
			return err
		}
		if err := groupRepo.RefreshTabCounts(ctx); err != nil {
			return err
		}

		now := s.now()
		if err := snapRepo.SaveSnapshot(ctx, encoded, now); err != nil {
			return err
		}

		md, err := snapRepo.GetMetadata(ctx)
		if err != nil {
			return err
		}
		md.LastSyncTime = now
		md.LocalVersion++
		md.State = models.SyncStateIdle
		md.ErrorMessage = ""
		return snapRepo.SaveMetadata(ctx, md)
	})
}

// fail finalizes a failed run: it logs, records the error in the sync
// metadata and fills the result.
func (s *SyncService) fail(ctx context.Context, result *models.SyncResult, err error) *models.SyncResult {
	result.Success = false
	result.Error = err.Error()
	s.log.Error(ctx, "sync failed", "error", err)

	snapRepo := snapshots.NewSQLiteRepository(s.db)
	md, mdErr := snapRepo.GetMetadata(ctx)
	if mdErr == nil {
		md.State = models.SyncStateError
		md.ErrorMessage = err.Error()
		if saveErr := snapRepo.SaveMetadata(ctx, md); saveErr != nil {
			s.log.Warn(ctx, "failed to record sync error", "error", saveErr)
		}
	}
	return result
}
