package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tabdav/tabdav/internal/dbx"
	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/models"
	"github.com/tabdav/tabdav/internal/repositories/groups"
	"github.com/tabdav/tabdav/internal/repositories/tabs"
)

// GroupService manages the group collection.
type GroupService struct {
	db  *sql.DB
	log logging.Logger
	now func() int64
}

// NewGroupService returns a GroupService bound to the local database.
func NewGroupService(db *sql.DB, log logging.Logger) *GroupService {
	return &GroupService{db: db, log: log, now: nowMillis}
}

// Create adds a group. Names are unique; a group created without a color
// gets the next one from the palette.
func (s *GroupService) Create(ctx context.Context, in models.CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	var result *models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		groupRepo := groups.NewSQLiteRepository(tx)

		if _, err := groupRepo.GetByName(ctx, name); err == nil {
			return models.ErrDuplicateName
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		color := in.Color
		if color == "" {
			n, err := groupRepo.Count(ctx)
			if err != nil {
				return err
			}
			color = models.GroupColors[n%len(models.GroupColors)]
		}

		now := s.now()
		result = &models.Group{
			ID:        uuid.NewString(),
			Name:      name,
			Color:     color,
			ListType:  in.ListType,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return groupRepo.CreateOrUpdate(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "group created", "id", result.ID, "name", result.Name)
	return result, nil
}

// Update renames or recolors a group; nil input fields are left unchanged.
func (s *GroupService) Update(ctx context.Context, in models.UpdateGroupInput) (*models.Group, error) {
	var result *models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		groupRepo := groups.NewSQLiteRepository(tx)

		group, err := groupRepo.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			group.Name = strings.TrimSpace(*in.Name)
			if group.Name == "" {
				return fmt.Errorf("group name is required")
			}
		}
		if in.Color != nil {
			group.Color = *in.Color
		}
		group.UpdatedAt = s.now()

		if err := groupRepo.CreateOrUpdate(ctx, group); err != nil {
			return err
		}
		result = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a group. With cascade the group's tabs are removed too;
// otherwise they move to the inbox. Either way no tab is left referencing
// the deleted group.
func (s *GroupService) Delete(ctx context.Context, id string, cascade bool) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		groupRepo := groups.NewSQLiteRepository(tx)
		tabRepo := tabs.NewSQLiteRepository(tx)

		if _, err := groupRepo.GetByID(ctx, id); err != nil {
			return err
		}

		members, err := tabRepo.GetAll(ctx, models.TabFilters{GroupID: id, IncludeArchived: true})
		if err != nil {
			return err
		}

		now := s.now()
		for i := range members {
			tab := &members[i]
			if cascade {
				if err := tabRepo.DeleteByID(ctx, tab.ID); err != nil {
					return err
				}
				continue
			}
			tab.GroupID = ""
			tab.InboxAt = &now
			tab.UpdatedAt = now
			tab.SyncStatus = models.SyncStatusPending
			if err := tabRepo.CreateOrUpdate(ctx, tab); err != nil {
				return err
			}
		}

		if err := groupRepo.DeleteByID(ctx, id); err != nil {
			return err
		}
		return groupRepo.RefreshTabCounts(ctx)
	})
}

// List returns all groups with fresh tab counts, ordered by name.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var result []models.Group
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		groupRepo := groups.NewSQLiteRepository(tx)
		if err := groupRepo.RefreshTabCounts(ctx); err != nil {
			return err
		}
		all, err := groupRepo.GetAll(ctx)
		if err != nil {
			return err
		}
		result = all
		return nil
	})
	return result, err
}

// Get returns a single group by id.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	return groups.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// GetByName returns a single group by its unique name.
func (s *GroupService) GetByName(ctx context.Context, name string) (*models.Group, error) {
	return groups.NewSQLiteRepository(s.db).GetByName(ctx, name)
}
