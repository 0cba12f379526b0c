package database

import (
	"fmt"
)

// RuleRepository handles read and maintenance operations for rules.
type RuleRepository struct {
	db *DB
}

func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// GetRules returns all stored rules in their load order.
func (r *RuleRepository) GetRules() ([]Rule, error) {
	rows, err := r.db.Query(`
		SELECT id, keywords, exclude_keywords, categories, domains, position, created_at, updated_at
		FROM rules
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get rules: %w", err)
	}
	defer rows.Close()

	var ruleSet []Rule
	for rows.Next() {
		var rule Rule
		var keywords, excludes, categories, domains string
		err := rows.Scan(&rule.ID, &keywords, &excludes, &categories, &domains,
			&rule.Position, &rule.CreatedAt, &rule.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}

		if rule.Keywords, err = unmarshalList(keywords); err != nil {
			return nil, err
		}
		if rule.ExcludeKeywords, err = unmarshalList(excludes); err != nil {
			return nil, err
		}
		if rule.Categories, err = unmarshalList(categories); err != nil {
			return nil, err
		}
		if rule.Domains, err = unmarshalList(domains); err != nil {
			return nil, err
		}

		ruleSet = append(ruleSet, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}

	return ruleSet, nil
}

// GetRuleCount returns the number of stored rules.
func (r *RuleRepository) GetRuleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM rules`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}

// RemoveAll deletes every rule and, via cascade, every item-rule
// relation referencing them.
func (r *RuleRepository) RemoveAll() error {
	_, err := r.db.Exec(`DELETE FROM rules`)
	if err != nil {
		return fmt.Errorf("failed to remove rules: %w", err)
	}
	return nil
}
