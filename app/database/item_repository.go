package database

import (
	"database/sql"
	"fmt"
)

// ItemRepository handles read and maintenance operations for stored
// items.
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetMatchedItems returns stored items newest first, each with the
// identifiers of the rules that selected it.
func (r *ItemRepository) GetMatchedItems(limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, source, category, guid, title, link, description, content,
		       published_at, content_hash, created_at
		FROM items
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var publishedAt sql.NullTime
		err := rows.Scan(&item.ID, &item.Source, &item.Category, &item.GUID,
			&item.Title, &item.Link, &item.Description, &item.Content,
			&publishedAt, &item.ContentHash, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if publishedAt.Valid {
			item.PublishedAt = &publishedAt.Time
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	for i := range items {
		ruleIDs, err := r.getMatchedRuleIDs(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].MatchedRuleIDs = ruleIDs
	}

	return items, nil
}

// getMatchedRuleIDs returns the rule identifiers related to an item, in
// rule order.
func (r *ItemRepository) getMatchedRuleIDs(itemID int64) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT ir.rule_id
		FROM item_rules ir
		JOIN rules ru ON ru.id = ir.rule_id
		WHERE ir.item_id = ?
		ORDER BY ru.position
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item relations: %w", err)
	}
	defer rows.Close()

	var ruleIDs []string
	for rows.Next() {
		var ruleID string
		if err := rows.Scan(&ruleID); err != nil {
			return nil, fmt.Errorf("failed to scan relation row: %w", err)
		}
		ruleIDs = append(ruleIDs, ruleID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relation rows: %w", err)
	}

	return ruleIDs, nil
}

// GetItemCount returns the number of stored items.
func (r *ItemRepository) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// GetRelationCount returns the number of item-rule relations.
func (r *ItemRepository) GetRelationCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM item_rules`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count relations: %w", err)
	}
	return count, nil
}

// RemoveAll deletes every item and, via cascade, every item-rule
// relation.
func (r *ItemRepository) RemoveAll() error {
	_, err := r.db.Exec(`DELETE FROM items`)
	if err != nil {
		return fmt.Errorf("failed to remove items: %w", err)
	}
	return nil
}
