package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/newsfocus/collector/app/feed"
	"github.com/newsfocus/collector/app/rules"
)

// WriteTx is the transaction-scoped write surface consumed by the
// persistence sequencer. Both upserts are idempotent: rules by id,
// items by (source, guid).
type WriteTx interface {
	UpsertRule(rule rules.Rule, position int) error
	UpsertItem(item feed.Item) error
}

// Store owns the database connection for the duration of one run's
// writes.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn inside a single transaction. The transaction is rolled
// back on error or panic and committed otherwise, so the connection is
// released on all exit paths.
func (s *Store) WithTx(ctx context.Context, fn func(tx WriteTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			sqlTx.Rollback()
		}
	}()

	if err := fn(&writeTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}

type writeTx struct {
	tx *sql.Tx
}

func (t *writeTx) UpsertRule(rule rules.Rule, position int) error {
	keywords, err := marshalList(rule.Keywords)
	if err != nil {
		return err
	}
	excludes, err := marshalList(rule.ExcludeKeywords)
	if err != nil {
		return err
	}
	categories, err := marshalList(rule.Categories)
	if err != nil {
		return err
	}
	domains, err := marshalList(rule.Domains)
	if err != nil {
		return err
	}

	_, err = t.tx.Exec(`
		INSERT INTO rules (id, keywords, exclude_keywords, categories, domains, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			keywords = excluded.keywords,
			exclude_keywords = excluded.exclude_keywords,
			categories = excluded.categories,
			domains = excluded.domains,
			position = excluded.position,
			updated_at = CURRENT_TIMESTAMP
	`, rule.ID, keywords, excludes, categories, domains, position)

	if err != nil {
		return fmt.Errorf("failed to upsert rule %q: %w", rule.ID, err)
	}

	return nil
}

func (t *writeTx) UpsertItem(item feed.Item) error {
	var itemID int64
	err := t.tx.QueryRow(`
		INSERT INTO items (source, category, guid, title, link, description, content, published_at, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, guid) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			description = excluded.description,
			content = excluded.content,
			published_at = excluded.published_at,
			content_hash = excluded.content_hash
		RETURNING id
	`, item.SourceName, item.Category, item.GUID, item.Title, item.Link,
		item.Description, item.Content, item.PublishedAt, item.ContentHash).Scan(&itemID)

	if err != nil {
		return fmt.Errorf("failed to upsert item %q: %w", item.GUID, err)
	}

	for _, ruleID := range item.MatchedRuleIDs {
		_, err := t.tx.Exec(`
			INSERT OR IGNORE INTO item_rules (item_id, rule_id)
			VALUES (?, ?)
		`, itemID, ruleID)
		if err != nil {
			return fmt.Errorf("failed to store relation %d -> %q: %w", itemID, ruleID, err)
		}
	}

	return nil
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
