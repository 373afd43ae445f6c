/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "knowledge.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndRecentFacts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, content := range []string{"first", "second", "third"} {
		if err := s.AppendFact(ctx, content, ""); err != nil {
			t.Fatalf("AppendFact(%q) error = %v", content, err)
		}
	}

	facts := s.RecentFacts(ctx, 2)
	got := make([]string, 0, len(facts))
	for _, f := range facts {
		got = append(got, f.Content)
	}
	// Newest first.
	if diff := cmp.Diff([]string{"third", "second"}, got); diff != "" {
		t.Errorf("RecentFacts() mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendFactRejectsEmpty(t *testing.T) {
	s := openTestStore(t)
	if err := s.AppendFact(context.Background(), "   ", ""); err == nil {
		t.Error("AppendFact(blank) succeeded, want error")
	}
}

func TestSearchFactsRanksByOverlap(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, content := range []string{
		"the servo library conflicts with tone on timer2",
		"the display uses the i2c bus at address 0x27",
		"servo jitter was fixed by moving to timer1",
	} {
		if err := s.AppendFact(ctx, content, ""); err != nil {
			t.Fatalf("AppendFact() error = %v", err)
		}
	}

	facts := s.SearchFacts(ctx, []string{"servo", "timer2"}, 10)
	if len(facts) != 2 {
		t.Fatalf("SearchFacts() returned %d facts, want 2", len(facts))
	}
	// Two keyword hits outrank one.
	if want := "the servo library conflicts with tone on timer2"; facts[0].Content != want {
		t.Errorf("SearchFacts()[0] = %q, want %q", facts[0].Content, want)
	}
}

func TestSearchFactsEmptyKeywords(t *testing.T) {
	s := openTestStore(t)
	if facts := s.SearchFacts(context.Background(), []string{" ", ""}, 5); facts != nil {
		t.Errorf("SearchFacts(no keywords) = %v, want nil", facts)
	}
}

func TestWorkItemLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, desc := range []string{"A", "B", "C"} {
		if err := s.AddWorkItem(ctx, desc); err != nil {
			t.Fatalf("AddWorkItem(%q) error = %v", desc, err)
		}
	}

	items := s.PendingWorkItems(ctx)
	if len(items) != 3 {
		t.Fatalf("PendingWorkItems() returned %d items, want 3", len(items))
	}

	// Complete the second listed item by its stable identifier.
	desc, ok := s.CompleteWorkItem(ctx, items[1].ID)
	if !ok || desc != "B" {
		t.Fatalf("CompleteWorkItem() = (%q, %v), want (\"B\", true)", desc, ok)
	}

	remaining := s.PendingWorkItems(ctx)
	got := make([]string, 0, len(remaining))
	for _, it := range remaining {
		got = append(got, it.Description)
	}
	if diff := cmp.Diff([]string{"A", "C"}, got); diff != "" {
		t.Errorf("PendingWorkItems() after completion (-want +got):\n%s", diff)
	}

	// Completing the same item again reports no transition.
	if _, ok := s.CompleteWorkItem(ctx, items[1].ID); ok {
		t.Error("second CompleteWorkItem() reported a transition, want false")
	}
}

func TestCompleteUnknownWorkItem(t *testing.T) {
	s := openTestStore(t)
	if _, ok := s.CompleteWorkItem(context.Background(), 42); ok {
		t.Error("CompleteWorkItem(unknown) reported a transition, want false")
	}
}
