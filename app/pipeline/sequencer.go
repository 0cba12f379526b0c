package pipeline

import (
	"context"
	"fmt"

	"github.com/newsfocus/collector/app/database"
	"github.com/newsfocus/collector/app/feed"
	"github.com/newsfocus/collector/app/rules"
)

// Store opens a transaction-scoped unit of work for one run's writes.
// Implemented by database.Store.
type Store interface {
	WithTx(ctx context.Context, fn func(tx database.WriteTx) error) error
}

// Sequencer writes a run's rule set and matched items as two strictly
// ordered phases: every rule is written before any item, so no stored
// item-rule relation can reference a rule that is not yet durable.
// Atomicity beyond the phase ordering is the store's transaction.
type Sequencer struct {
	store Store
}

func NewSequencer(store Store) *Sequencer {
	return &Sequencer{store: store}
}

// Run persists the rule set in its load order, then the matched items.
// Any write error aborts the run; the transaction scope guarantees the
// connection is released either way.
func (s *Sequencer) Run(ctx context.Context, ruleSet []rules.Rule, items []feed.Item) error {
	return s.store.WithTx(ctx, func(tx database.WriteTx) error {
		for i, rule := range ruleSet {
			if err := tx.UpsertRule(rule, i); err != nil {
				return fmt.Errorf("failed to store rule %q: %w", rule.ID, err)
			}
		}

		for _, item := range items {
			if err := tx.UpsertItem(item); err != nil {
				return fmt.Errorf("failed to store item %q: %w", item.GUID, err)
			}
		}

		return nil
	})
}
