package entities

import "time"

// ActionKind says which record an action was derived from.
type ActionKind string

const (
	ActionDocument ActionKind = "document"
	ActionCase     ActionKind = "case"
)

// Action is a prioritized to-do item. The ID is borrowed from the source
// document or case.
type Action struct {
	ID          string     `json:"id"`
	Kind        ActionKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}
