/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package notify

import (
	"context"
	"sync"

	"github.com/chainguard-dev/clog"
)

// Notifier is a best-effort, non-blocking message queue between the webhook
// goroutines and the chat loop.
type Notifier struct {
	ch chan string

	mu     sync.Mutex
	closed bool
}

// New returns a Notifier that buffers up to size messages.
func New(size int) *Notifier {
	if size <= 0 {
		size = 16
	}
	return &Notifier{ch: make(chan string, size)}
}

// Notify enqueues text without blocking. If the queue is full or the
// notifier is closed, the message is logged and dropped.
func (n *Notifier) Notify(ctx context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		clog.FromContext(ctx).With("text", text).Warn("Notifier closed, dropping notification")
		return
	}
	select {
	case n.ch <- text:
	default:
		clog.FromContext(ctx).With("text", text).Warn("Notification queue full, dropping notification")
	}
}

// Messages exposes the queue for the consuming loop.
func (n *Notifier) Messages() <-chan string {
	return n.ch
}

// Run forwards queued messages to send until ctx is canceled. Send failures
// are logged and the message is dropped; delivery is never retried.
func (n *Notifier) Run(ctx context.Context, send func(context.Context, string) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-n.ch:
			if !ok {
				return
			}
			if err := send(ctx, text); err != nil {
				clog.FromContext(ctx).With("error", err).With("text", text).
					Warn("Notification delivery failed, dropping")
			}
		}
	}
}

// Close marks the notifier stopped. Later Notify calls drop their messages.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.ch)
	}
}
