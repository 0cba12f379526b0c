package feed

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Parser converts raw RSS/Atom data into normalized Items.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed data fetched for one (source, category) pair.
// Entries keep their feed order.
func (p *Parser) Run(data []byte, sourceName, category string) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := p.normalizeEntry(entry, sourceName, category)
		item.ContentHash = p.generateContentHash(item)
		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) normalizeEntry(entry *gofeed.Item, sourceName, category string) Item {
	item := Item{
		SourceName:  sourceName,
		Category:    category,
		GUID:        coalesce(entry.GUID, entry.Link),
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
		Content:     entry.Content,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = entry.UpdatedParsed
	}

	return item
}

// generateContentHash hashes title and link only, so an item whose
// description gets edited upstream is still recognized as the same item.
func (p *Parser) generateContentHash(item Item) string {
	content := fmt.Sprintf("%s|%s", item.Title, item.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
