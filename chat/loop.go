/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chainguard.dev/menderaf/knowledge"
	"chainguard.dev/menderaf/notify"
	"github.com/chainguard-dev/clog"
)

// Responder is the slice of the brain the loop drives.
type Responder interface {
	Respond(ctx context.Context, userName, input string) (string, error)
}

// Store is the slice of the knowledge store the commands touch.
type Store interface {
	AppendFact(ctx context.Context, content, category string) error
	AddWorkItem(ctx context.Context, description string) error
	PendingWorkItems(ctx context.Context) []knowledge.WorkItem
	CompleteWorkItem(ctx context.Context, id int64) (string, bool)
}

// Loop dispatches inbound chat traffic and webhook notifications.
type Loop struct {
	bus      Bus
	brain    Responder
	store    Store
	notifier *notify.Notifier
}

// NewLoop returns a chat Loop.
func NewLoop(bus Bus, brain Responder, store Store, notifier *notify.Notifier) *Loop {
	return &Loop{bus: bus, brain: brain, store: store, notifier: notifier}
}

// Run processes messages and notifications until ctx is canceled or the bus
// closes. Chat turns run one at a time; webhook notifications interleave
// between them.
func (l *Loop) Run(ctx context.Context) {
	log := clog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return

		case text, ok := <-l.notifier.Messages():
			if !ok {
				return
			}
			if err := l.bus.Send(ctx, text); err != nil {
				log.With("error", err).Warn("Forwarding notification failed, dropping")
			}

		case msg, ok := <-l.bus.Receive():
			if !ok {
				return
			}
			l.send(ctx, l.handle(ctx, msg))
		}
	}
}

func (l *Loop) send(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := l.bus.Send(ctx, text); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Sending chat reply failed")
	}
}

// handle routes one message and returns the reply text.
func (l *Loop) handle(ctx context.Context, msg Message) string {
	command, rest, _ := strings.Cut(msg.Text, " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case "/start":
		return "Agent online. Commands: /learn, /task, /tasks, /done N. Everything else goes to the model."

	case "/learn":
		if rest == "" {
			return "Usage: /learn <fact to remember>"
		}
		if err := l.store.AppendFact(ctx, rest, "chat"); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Saving fact failed")
			return "Could not save that right now."
		}
		return fmt.Sprintf("Saved: %q", rest)

	case "/task":
		if rest == "" {
			return "Usage: /task <description>"
		}
		if err := l.store.AddWorkItem(ctx, rest); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Adding work item failed")
			return "Could not add that task right now."
		}
		return fmt.Sprintf("Task added: %s", rest)

	case "/tasks":
		items := l.store.PendingWorkItems(ctx)
		if len(items) == 0 {
			return "No pending tasks."
		}
		var b strings.Builder
		b.WriteString("Pending tasks:\n")
		for i, it := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, it.Description)
		}
		return strings.TrimRight(b.String(), "\n")

	case "/done":
		return l.completeTask(ctx, rest)

	default:
		reply, err := l.brain.Respond(ctx, msg.From, msg.Text)
		if err != nil {
			clog.FromContext(ctx).With("error", err).Error("Chat turn failed")
			return fmt.Sprintf("That did not work: %v", err)
		}
		return reply
	}
}

// completeTask resolves a 1-based position against the pending list as it
// stands right now, then completes the item by its stable identifier. The
// position is only meaningful for this snapshot; the identifier protects
// against the list shifting underneath us.
func (l *Loop) completeTask(ctx context.Context, arg string) string {
	position, err := strconv.Atoi(arg)
	if err != nil || position < 1 {
		return "Usage: /done <task number from /tasks>"
	}

	items := l.store.PendingWorkItems(ctx)
	if position > len(items) {
		return fmt.Sprintf("There is no task %d; %d pending.", position, len(items))
	}

	item := items[position-1]
	description, ok := l.store.CompleteWorkItem(ctx, item.ID)
	if !ok {
		return fmt.Sprintf("Task %d was already completed or vanished.", position)
	}
	return fmt.Sprintf("Completed: %s", description)
}
