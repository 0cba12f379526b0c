package database

import (
	"time"
)

// Rule is a stored rule row.
type Rule struct {
	ID              string
	Keywords        []string
	ExcludeKeywords []string
	Categories      []string
	Domains         []string
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item is a stored item row. MatchedRuleIDs is populated from the
// item_rules relation table.
type Item struct {
	ID             int64
	Source         string
	Category       string
	GUID           string
	Title          string
	Link           string
	Description    string
	Content        string
	PublishedAt    *time.Time
	ContentHash    string
	CreatedAt      time.Time
	MatchedRuleIDs []string
}
