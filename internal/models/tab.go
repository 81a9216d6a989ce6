package models

import "strings"

// Sync status values for a tab. SyncStatus is local bookkeeping only and
// never leaves the device.
const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
	SyncStatusError   = "error"
)

// Tab lifecycle status values. Empty means the tab is active.
const (
	StatusCompleted = "completed"
	StatusDeleted   = "deleted"
)

// Tab is one saved web page. The local primary key is ID; across devices a
// tab is identified by its normalized URL (see URLKey).
type Tab struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	// Favicon is a data URL or a regular icon URL.
	Favicon string `json:"favicon,omitempty"`
	// GroupID references Group.ID. Empty means the tab sits in the inbox.
	GroupID string   `json:"groupId,omitempty"`
	Note    string   `json:"note,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	// DeletedAt, when set, marks the tab as archived (moved to history).
	// Archived tabs are still synchronized; physical deletion is decided by
	// the merge engine.
	DeletedAt *int64 `json:"deletedAt,omitempty"`
	// OriginalGroupID remembers the group a tab belonged to before it was
	// archived, so Restore can put it back.
	OriginalGroupID string `json:"originalGroupId,omitempty"`
	// InboxAt is the time the tab entered the ungrouped inbox state.
	InboxAt *int64 `json:"inboxAt,omitempty"`
	// CleanedByWind marks tabs archived by the age-based cleanup rather
	// than by the user.
	CleanedByWind bool   `json:"cleanedByWind,omitempty"`
	Status        string `json:"status,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
	// UpdatedAt is the logical clock used for conflict resolution. It only
	// moves forward.
	UpdatedAt   int64  `json:"updatedAt"`
	LastVisited *int64 `json:"lastVisited,omitempty"`
	SyncStatus  string `json:"-"`
}

// URLKey returns the synchronization identity of a URL: two tabs whose URLs
// compare equal case-insensitively are the same logical entity.
func URLKey(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}

// Archived reports whether the tab has been soft-deleted to history.
func (t *Tab) Archived() bool {
	return t.DeletedAt != nil
}

// CreateTabInput carries the user-supplied fields for a new tab.
type CreateTabInput struct {
	URL     string
	Title   string
	Favicon string
	GroupID string
	Note    string
	Tags    []string
}

// UpdateTabInput updates an existing tab; nil pointers leave a field as-is.
type UpdateTabInput struct {
	ID      string
	URL     *string
	Title   *string
	Favicon *string
	GroupID *string
	Note    *string
	Tags    []string
}

// TabFilters narrows List results.
type TabFilters struct {
	// Query matches a substring of title, URL or note, case-insensitive.
	Query   string
	GroupID string
	// InboxOnly restricts results to tabs without a group.
	InboxOnly bool
	// IncludeArchived includes tabs with DeletedAt set.
	IncludeArchived bool
	SyncStatus      string
}

// TabStats is the per-status and per-group breakdown shown by the status
// command.
type TabStats struct {
	Total   int
	Synced  int
	Pending int
	Error   int
	ByGroup map[string]int
}
