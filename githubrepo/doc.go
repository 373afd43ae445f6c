/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubrepo adapts one branch of one GitHub repository into a small
// path-addressed file store: read, create-or-update, delete, and a recursive
// tree listing anchored at the branch head.
//
// Writes are conditional: an update carries the blob SHA observed at read
// time, so a concurrent writer surfaces as ErrConflict instead of being
// silently overwritten.
package githubrepo
