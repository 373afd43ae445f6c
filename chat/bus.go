/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chat

import "context"

// Message is one inbound chat message.
type Message struct {
	From string
	Text string
}

// Bus is the opaque message transport the loop speaks through.
type Bus interface {
	// Receive yields inbound messages. The channel closes when the
	// transport goes away.
	Receive() <-chan Message

	// Send delivers text to the operator.
	Send(ctx context.Context, text string) error
}
