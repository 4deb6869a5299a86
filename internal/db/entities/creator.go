package entities

import (
	"strings"
	"time"
)

// Priority tiers for reference creators, ordered from most to least important.
const (
	PriorityVeryHigh = "VERY HIGH"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// PriorityOrder lists the tiers in display order.
var PriorityOrder = []string{PriorityVeryHigh, PriorityHigh, PriorityMedium, PriorityLow}

// ValidPriority reports whether p is a known priority tier.
func ValidPriority(p string) bool {
	for _, tier := range PriorityOrder {
		if tier == p {
			return true
		}
	}
	return false
}

// Creator is a tracked external content author used as stylistic reference.
type Creator struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	YouTube      bool      `json:"youtube" db:"youtube"`
	Instagram    bool      `json:"instagram" db:"instagram"`
	LinkedIn     bool      `json:"linkedin" db:"linkedin"`
	XTwitter     bool      `json:"x_twitter" db:"x_twitter"`
	Spotify      bool      `json:"spotify" db:"spotify"`
	Fields       []string  `json:"fields" db:"fields"`
	Priority     string    `json:"priority" db:"priority"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	ContentNotes *string   `json:"content_notes,omitempty" db:"content_notes"`
	Analyzed     bool      `json:"analyzed" db:"analyzed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasField reports whether the creator's topical fields contain the given
// value, compared case-insensitively.
func (c *Creator) HasField(field string) bool {
	for _, f := range c.Fields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	return false
}
