package models

// Group list types. Empty means a plain group.
const (
	ListTypeAction = "action"
	ListTypeBuffer = "buffer"
)

// Group is a named container for tabs. IDs are stable across devices; a
// merge never regenerates them.
type Group struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	ListType string `json:"listType,omitempty"`
	// TabCount is derived: it always equals the number of non-archived tabs
	// whose GroupID is this group's ID. It is recomputed after structural
	// changes and never merged as an independent field.
	TabCount  int   `json:"tabCount"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// CreateGroupInput carries the user-supplied fields for a new group.
type CreateGroupInput struct {
	Name     string
	Color    string
	ListType string
}

// UpdateGroupInput updates an existing group; nil pointers leave a field
// as-is.
type UpdateGroupInput struct {
	ID    string
	Name  *string
	Color *string
}

// GroupColors is the default palette assigned round-robin to new groups
// created without an explicit color.
var GroupColors = []string{
	"#F44336", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#03A9F4", "#00BCD4", "#009688", "#4CAF50",
	"#8BC34A", "#CDDC39", "#FFC107", "#FF9800", "#FF5722",
	"#795548", "#607D8B", "#9E9E9E", "#FFEB3B", "#00E676",
}
