package feed

import (
	"time"
)

// Item is a single collected news entry, normalized from one feed entry.
// Immutable after parsing except for the rule annotations added by the
// rule engine and the optionally extracted full content.
type Item struct {
	SourceName  string
	Category    string
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time

	ContentHash string

	// MatchedRuleIDs holds the identifiers of every rule that matched
	// this item, in rule definition order.
	MatchedRuleIDs []string
}
