package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/newsfocus/collector/app/database"
	"github.com/newsfocus/collector/app/feed"
	"github.com/newsfocus/collector/app/rules"
)

// recordingStore is a test double tracking write-call order so the
// rules-before-items invariant can be asserted.
type recordingStore struct {
	calls      []string
	writtenIDs map[string]bool
	failOn     string
	inTx       bool
	released   bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{writtenIDs: make(map[string]bool)}
}

func (s *recordingStore) WithTx(ctx context.Context, fn func(tx database.WriteTx) error) error {
	s.inTx = true
	defer func() {
		s.inTx = false
		s.released = true
	}()
	return fn(&recordingTx{store: s})
}

type recordingTx struct {
	store *recordingStore
}

func (t *recordingTx) UpsertRule(rule rules.Rule, position int) error {
	call := "rule:" + rule.ID
	if t.store.failOn == call {
		return errors.New("simulated write failure")
	}
	t.store.calls = append(t.store.calls, call)
	t.store.writtenIDs[rule.ID] = true
	return nil
}

func (t *recordingTx) UpsertItem(item feed.Item) error {
	call := "item:" + item.GUID
	if t.store.failOn == call {
		return errors.New("simulated write failure")
	}
	// The referenced rule must already be durable when the relation is
	// written.
	for _, ruleID := range item.MatchedRuleIDs {
		if !t.store.writtenIDs[ruleID] {
			return fmt.Errorf("relation to unwritten rule %q", ruleID)
		}
	}
	t.store.calls = append(t.store.calls, call)
	return nil
}

func TestSequencerWritesRulesBeforeItems(t *testing.T) {
	store := newRecordingStore()
	sequencer := NewSequencer(store)

	ruleSet := []rules.Rule{
		{ID: "r1", Keywords: []string{"a"}},
		{ID: "r2", Keywords: []string{"b"}},
	}
	items := []feed.Item{
		{GUID: "i1", MatchedRuleIDs: []string{"r1"}},
		{GUID: "i2", MatchedRuleIDs: []string{"r1", "r2"}},
	}

	if err := sequencer.Run(context.Background(), ruleSet, items); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"rule:r1", "rule:r2", "item:i1", "item:i2"}
	if len(store.calls) != len(expected) {
		t.Fatalf("Expected %d calls, got %v", len(expected), store.calls)
	}
	for i, call := range expected {
		if store.calls[i] != call {
			t.Errorf("Call %d: expected %s, got %s", i, call, store.calls[i])
		}
	}

	if !store.released {
		t.Error("Transaction scope was not released")
	}
}

func TestSequencerRuleOrderFollowsLoadOrder(t *testing.T) {
	store := newRecordingStore()
	sequencer := NewSequencer(store)

	// Identifier order differs from load order on purpose.
	ruleSet := []rules.Rule{
		{ID: "r3"},
		{ID: "r1"},
		{ID: "r2"},
	}

	if err := sequencer.Run(context.Background(), ruleSet, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"rule:r3", "rule:r1", "rule:r2"}
	for i, call := range expected {
		if store.calls[i] != call {
			t.Errorf("Call %d: expected %s, got %s", i, call, store.calls[i])
		}
	}
}

func TestSequencerEmptyRun(t *testing.T) {
	store := newRecordingStore()
	sequencer := NewSequencer(store)

	if err := sequencer.Run(context.Background(), nil, nil); err != nil {
		t.Fatalf("Expected no error for empty run, got: %v", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("Expected no writes, got %v", store.calls)
	}
}

func TestSequencerItemWriteFailureIsFatal(t *testing.T) {
	store := newRecordingStore()
	store.failOn = "item:i2"
	sequencer := NewSequencer(store)

	ruleSet := []rules.Rule{{ID: "r1"}}
	items := []feed.Item{
		{GUID: "i1", MatchedRuleIDs: []string{"r1"}},
		{GUID: "i2", MatchedRuleIDs: []string{"r1"}},
		{GUID: "i3", MatchedRuleIDs: []string{"r1"}},
	}

	err := sequencer.Run(context.Background(), ruleSet, items)
	if err == nil {
		t.Fatal("Expected persistence failure to propagate")
	}
	if !strings.Contains(err.Error(), "i2") {
		t.Errorf("Error should identify the failing item: %v", err)
	}

	// Remaining writes in the phase are aborted.
	for _, call := range store.calls {
		if call == "item:i3" {
			t.Error("Writes after the failure should not happen")
		}
	}

	if !store.released {
		t.Error("Transaction scope must be released on failure too")
	}
}

func TestSequencerRuleWriteFailureAbortsBeforeItems(t *testing.T) {
	store := newRecordingStore()
	store.failOn = "rule:r1"
	sequencer := NewSequencer(store)

	ruleSet := []rules.Rule{{ID: "r1"}}
	items := []feed.Item{{GUID: "i1", MatchedRuleIDs: []string{"r1"}}}

	if err := sequencer.Run(context.Background(), ruleSet, items); err == nil {
		t.Fatal("Expected rule write failure to propagate")
	}

	for _, call := range store.calls {
		if strings.HasPrefix(call, "item:") {
			t.Error("No item may be written after a rule-phase failure")
		}
	}
}
