/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package chat runs the interactive side of the agent. The transport is an
// opaque Bus (a console implementation ships here; anything that can carry
// text messages will do); the loop routes slash commands and free text to
// the brain and drains the notifier so webhook status lands in the same
// conversation.
package chat
