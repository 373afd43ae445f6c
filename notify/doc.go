/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package notify bridges synchronous webhook handling to the chat loop
// through an explicit buffered channel. Notification is best-effort: a send
// never blocks the caller, and a full or stopped queue drops the message
// with a log line rather than retrying.
package notify
