package diff

import "time"

// ChangeType classifies the severity of a difference between two project
// versions.
type ChangeType string

const (
	// ChangeAdditive means something was added or loosened. Safe for
	// existing pages and callers.
	ChangeAdditive ChangeType = "additive"
	// ChangeBreaking means something was removed, renamed or tightened.
	ChangeBreaking ChangeType = "breaking"
)

// Item describes a single difference between two analyzed projects.
type Item struct {
	Type        ChangeType `json:"type"`
	Category    string     `json:"category"` // "table_removed", "column_added", "type_changed", "parameter_removed", ...
	Object      string     `json:"object"`
	Member      string     `json:"member,omitempty"`
	OldValue    string     `json:"old_value,omitempty"`
	NewValue    string     `json:"new_value,omitempty"`
	Description string     `json:"description"`
}

// Report summarizes all differences between two analyzed projects.
type Report struct {
	OldProject    string    `json:"old_project"`
	NewProject    string    `json:"new_project"`
	HasChanges    bool      `json:"has_changes"`
	HasBreaking   bool      `json:"has_breaking"`
	AdditiveCount int       `json:"additive_count"`
	BreakingCount int       `json:"breaking_count"`
	Items         []Item    `json:"items"`
	ComparedAt    time.Time `json:"compared_at"`
}
