package merge

import (
	"encoding/json"

	"github.com/tabdav/tabdav/internal/models"
)

// DocumentVersion is the wire format version of the sync document.
const DocumentVersion = 1

// Document is the single JSON blob stored at the remote path and, locally,
// as the snapshot. Groups are keyed by id, tabs by normalized URL.
type Document struct {
	Version   int                    `json:"version"`
	UpdatedAt int64                  `json:"updatedAt"`
	Groups    map[string]GroupRecord `json:"groups"`
	Tabs      map[string]TabRecord   `json:"tabs"`
}

// TabRecord is the wire shape of a tab. SyncStatus is deliberately absent:
// it never leaves the device.
type TabRecord struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Favicon         string   `json:"favicon,omitempty"`
	GroupID         string   `json:"groupId,omitempty"`
	DeletedAt       *int64   `json:"deletedAt,omitempty"`
	OriginalGroupID string   `json:"originalGroupId,omitempty"`
	InboxAt         *int64   `json:"inboxAt,omitempty"`
	CleanedByWind   bool     `json:"cleanedByWind,omitempty"`
	Status          string   `json:"status,omitempty"`
	CreatedAt       int64    `json:"createdAt"`
	UpdatedAt       int64    `json:"updatedAt"`
	LastVisited     *int64   `json:"lastVisited,omitempty"`
	Note            string   `json:"note,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

func (t TabRecord) Stamp() int64 { return t.UpdatedAt }

// GroupRecord is the wire shape of a group. TabCount is absent: it is
// derived locally and never merged.
type GroupRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	ListType  string `json:"listType,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (g GroupRecord) Stamp() int64 { return g.UpdatedAt }

// NewDocument returns an empty document at the current wire version.
func NewDocument(updatedAt int64) *Document {
	return &Document{
		Version:   DocumentVersion,
		UpdatedAt: updatedAt,
		Groups:    make(map[string]GroupRecord),
		Tabs:      make(map[string]TabRecord),
	}
}

// ParseDocument decodes a sync document, normalizing nil maps so callers
// can always range over Groups and Tabs.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	if doc.Groups == nil {
		doc.Groups = make(map[string]GroupRecord)
	}
	if doc.Tabs == nil {
		doc.Tabs = make(map[string]TabRecord)
	}
	return &doc, nil
}

// Encode serializes the document for upload or snapshot storage.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Empty reports whether the document carries no entities at all.
func (d *Document) Empty() bool {
	return len(d.Groups) == 0 && len(d.Tabs) == 0
}

// TabRecordFrom converts a stored tab to its wire shape.
func TabRecordFrom(t models.Tab) TabRecord {
	return TabRecord{
		ID:              t.ID,
		URL:             t.URL,
		Title:           t.Title,
		Favicon:         t.Favicon,
		GroupID:         t.GroupID,
		DeletedAt:       t.DeletedAt,
		OriginalGroupID: t.OriginalGroupID,
		InboxAt:         t.InboxAt,
		CleanedByWind:   t.CleanedByWind,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		LastVisited:     t.LastVisited,
		Note:            t.Note,
		Tags:            t.Tags,
	}
}

// Tab converts a wire record back to the stored shape. The caller decides
// the sync status; merged records have by definition just been synced.
func (t TabRecord) Tab() models.Tab {
	return models.Tab{
		ID:              t.ID,
		URL:             t.URL,
		Title:           t.Title,
		Favicon:         t.Favicon,
		GroupID:         t.GroupID,
		DeletedAt:       t.DeletedAt,
		OriginalGroupID: t.OriginalGroupID,
		InboxAt:         t.InboxAt,
		CleanedByWind:   t.CleanedByWind,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		LastVisited:     t.LastVisited,
		Note:            t.Note,
		Tags:            t.Tags,
		SyncStatus:      models.SyncStatusSynced,
	}
}

// GroupRecordFrom converts a stored group to its wire shape.
func GroupRecordFrom(g models.Group) GroupRecord {
	return GroupRecord{
		ID:        g.ID,
		Name:      g.Name,
		Color:     g.Color,
		ListType:  g.ListType,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// Group converts a wire record back to the stored shape. TabCount starts at
// zero and is recomputed after the merge is applied.
func (g GroupRecord) Group() models.Group {
	return models.Group{
		ID:        g.ID,
		Name:      g.Name,
		Color:     g.Color,
		ListType:  g.ListType,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
