/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chainguard.dev/menderaf/knowledge"
	"chainguard.dev/menderaf/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	in  chan Message
	out chan string
}

func newFakeBus() *fakeBus {
	return &fakeBus{in: make(chan Message, 8), out: make(chan string, 8)}
}

func (b *fakeBus) Receive() <-chan Message { return b.in }

func (b *fakeBus) Send(_ context.Context, text string) error {
	b.out <- text
	return nil
}

func (b *fakeBus) reply(t *testing.T) string {
	t.Helper()
	select {
	case text := <-b.out:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reply")
		return ""
	}
}

type fakeStore struct {
	facts    []string
	items    []knowledge.WorkItem
	nextID   int64
	failNext error
}

func (s *fakeStore) AppendFact(_ context.Context, content, _ string) error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.facts = append(s.facts, content)
	return nil
}

func (s *fakeStore) AddWorkItem(_ context.Context, description string) error {
	s.nextID++
	s.items = append(s.items, knowledge.WorkItem{ID: s.nextID, Description: description})
	return nil
}

func (s *fakeStore) PendingWorkItems(_ context.Context) []knowledge.WorkItem {
	return append([]knowledge.WorkItem(nil), s.items...)
}

func (s *fakeStore) CompleteWorkItem(_ context.Context, id int64) (string, bool) {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return it.Description, true
		}
	}
	return "", false
}

type fakeResponder struct {
	reply string
	err   error
	seen  []Message
}

func (r *fakeResponder) Respond(_ context.Context, userName, input string) (string, error) {
	r.seen = append(r.seen, Message{From: userName, Text: input})
	return r.reply, r.err
}

func startLoop(t *testing.T) (*fakeBus, *fakeStore, *fakeResponder, *notify.Notifier) {
	t.Helper()
	bus := newFakeBus()
	store := &fakeStore{}
	responder := &fakeResponder{reply: "hello from the model"}
	notifier := notify.New(8)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go NewLoop(bus, responder, store, notifier).Run(ctx)
	return bus, store, responder, notifier
}

func TestLoopLearnCommand(t *testing.T) {
	bus, store, _, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "/learn the servo pin is GPIO 13"}
	reply := bus.reply(t)

	assert.Contains(t, reply, "the servo pin is GPIO 13")
	require.Len(t, store.facts, 1)
	assert.Equal(t, "the servo pin is GPIO 13", store.facts[0])
}

func TestLoopLearnWithoutArgument(t *testing.T) {
	bus, store, _, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "/learn"}
	assert.Contains(t, bus.reply(t), "Usage: /learn")
	assert.Empty(t, store.facts)
}

func TestLoopLearnStoreFailure(t *testing.T) {
	bus, store, _, _ := startLoop(t)
	store.failNext = errors.New("disk full")

	bus.in <- Message{From: "sam", Text: "/learn doomed"}
	assert.Contains(t, bus.reply(t), "Could not save")
}

func TestLoopTaskLifecycle(t *testing.T) {
	bus, _, _, _ := startLoop(t)

	for _, desc := range []string{"wire the display", "calibrate the servo", "flash firmware"} {
		bus.in <- Message{From: "sam", Text: "/task " + desc}
		assert.Contains(t, bus.reply(t), desc)
	}

	bus.in <- Message{From: "sam", Text: "/tasks"}
	listing := bus.reply(t)
	assert.Contains(t, listing, "1. wire the display")
	assert.Contains(t, listing, "2. calibrate the servo")
	assert.Contains(t, listing, "3. flash firmware")

	// Completing the second item names the second item, not whatever later
	// occupies position two.
	bus.in <- Message{From: "sam", Text: "/done 2"}
	assert.Equal(t, "Completed: calibrate the servo", bus.reply(t))

	bus.in <- Message{From: "sam", Text: "/tasks"}
	listing = bus.reply(t)
	assert.Contains(t, listing, "1. wire the display")
	assert.Contains(t, listing, "2. flash firmware")
	assert.NotContains(t, listing, "calibrate")
}

func TestLoopDoneOutOfRange(t *testing.T) {
	bus, _, _, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "/task only one"}
	bus.reply(t)

	bus.in <- Message{From: "sam", Text: "/done 5"}
	assert.Contains(t, bus.reply(t), "no task 5")

	bus.in <- Message{From: "sam", Text: "/done zero"}
	assert.Contains(t, bus.reply(t), "Usage: /done")
}

func TestLoopTasksEmpty(t *testing.T) {
	bus, _, _, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "/tasks"}
	assert.Equal(t, "No pending tasks.", bus.reply(t))
}

func TestLoopFreeTextGoesToBrain(t *testing.T) {
	bus, _, responder, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "why does the display flicker?"}
	assert.Equal(t, "hello from the model", bus.reply(t))
	require.Len(t, responder.seen, 1)
	assert.Equal(t, "sam", responder.seen[0].From)
	assert.Equal(t, "why does the display flicker?", responder.seen[0].Text)
}

func TestLoopBrainFailureSurfaces(t *testing.T) {
	bus, _, responder, _ := startLoop(t)
	responder.err = fmt.Errorf("model unavailable")
	responder.reply = ""

	bus.in <- Message{From: "sam", Text: "anything"}
	assert.Contains(t, bus.reply(t), "model unavailable")
}

func TestLoopForwardsNotifications(t *testing.T) {
	bus, _, _, notifier := startLoop(t)

	notifier.Notify(context.Background(), "Build is green again.")
	assert.Equal(t, "Build is green again.", bus.reply(t))
}

func TestLoopStartCommand(t *testing.T) {
	bus, _, responder, _ := startLoop(t)

	bus.in <- Message{From: "sam", Text: "/start"}
	assert.Contains(t, bus.reply(t), "Agent online")
	assert.Empty(t, responder.seen)
}
