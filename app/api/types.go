package api

import (
	"time"

	"github.com/newsfocus/collector/app/database"
)

// ItemReader is the read surface the API consumes for stored items.
// Implemented by database.ItemRepository.
type ItemReader interface {
	GetMatchedItems(limit int) ([]database.Item, error)
	GetItemCount() (int, error)
	GetRelationCount() (int, error)
}

// RuleReader is the read surface the API consumes for stored rules.
// Implemented by database.RuleRepository.
type RuleReader interface {
	GetRuleCount() (int, error)
}

// Response types

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type statsResponse struct {
	Items     int `json:"items"`
	Relations int `json:"relations"`
	Rules     int `json:"rules"`
}

type itemResponse struct {
	Source         string     `json:"source"`
	Category       string     `json:"category"`
	Title          string     `json:"title"`
	Link           string     `json:"link"`
	Description    string     `json:"description,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	MatchedRuleIDs []string   `json:"matched_rules"`
}
