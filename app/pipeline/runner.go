package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/newsfocus/collector/app/collector"
	"github.com/newsfocus/collector/app/feed"
	"github.com/newsfocus/collector/app/rules"
)

// Extractor upgrades a matched item's content from its linked page.
// Implemented by feed.Extractor; nil disables extraction.
type Extractor interface {
	Run(ctx context.Context, link string) (string, error)
}

// Runner is the run entry point: collect, apply rules, persist.
type Runner struct {
	registry  []collector.Source
	ruleSet   []rules.Rule
	collector *collector.Collector
	engine    *rules.Engine
	sequencer *Sequencer
	extractor Extractor
}

func NewRunner(registry []collector.Source, ruleSet []rules.Rule,
	c *collector.Collector, engine *rules.Engine, sequencer *Sequencer,
	extractor Extractor) *Runner {
	return &Runner{
		registry:  registry,
		ruleSet:   ruleSet,
		collector: c,
		engine:    engine,
		sequencer: sequencer,
		extractor: extractor,
	}
}

// Run performs one full collection run and returns the total and
// matched item counts. Fetch failures and a collection deadline only
// surface in logs; a persistence failure fails the run.
func (r *Runner) Run(ctx context.Context) (int, int, error) {
	start := time.Now()

	var items []feed.Item
	for result := range r.collector.Run(ctx, r.registry) {
		if result.Err != nil {
			// Already logged by the collector with the feed URL.
			continue
		}
		items = append(items, result.Items...)
	}

	_, matched := r.engine.Run(items, r.ruleSet)

	// Completion order is non-deterministic, so reorder by a stable key
	// to make persistence reproducible across runs.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].SourceName != matched[j].SourceName {
			return matched[i].SourceName < matched[j].SourceName
		}
		return matched[i].Category < matched[j].Category
	})

	if r.extractor != nil {
		r.extractContent(ctx, matched)
	}

	if err := r.sequencer.Run(ctx, r.ruleSet, matched); err != nil {
		return 0, 0, fmt.Errorf("failed to persist collection run: %w", err)
	}

	slog.Info("Collection run completed",
		"matched", len(matched),
		"total", len(items),
		"rules", len(r.ruleSet),
		"elapsed", time.Since(start))

	return len(items), len(matched), nil
}

// extractContent replaces each matched item's feed content with the
// readable content of its linked page. Extraction failures fail open:
// the item keeps its feed content.
func (r *Runner) extractContent(ctx context.Context, items []feed.Item) {
	for i := range items {
		if items[i].Link == "" {
			continue
		}
		content, err := r.extractor.Run(ctx, items[i].Link)
		if err != nil {
			slog.Warn("Content extraction failed", "link", items[i].Link, "error", err)
			continue
		}
		items[i].Content = content
	}
}
