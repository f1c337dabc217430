package model

import (
	"strings"
	"time"
)

// Item is the domain model for a todo entry.
// ID is zero until the store has persisted the item.
type Item struct {
	ID          int64     `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"` // "" means absent
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// New builds an unsaved item with a normalized description.
func New(title, description string, done bool) Item {
	return Item{
		Title:       title,
		Description: NormalizeDescription(description),
		Done:        done,
	}
}

// Persisted reports whether the store has assigned an id.
func (it Item) Persisted() bool { return it.ID != 0 }

// HasDescription reports whether a description is present.
func (it Item) HasDescription() bool { return it.Description != "" }

// NormalizeDescription trims s; blank descriptions collapse to "".
func NormalizeDescription(s string) string {
	return strings.TrimSpace(s)
}
