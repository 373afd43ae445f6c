/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package knowledge is the agent's persistent memory: an append-only table of
// free-text facts and a table of pending/completed work items, backed by a
// local SQLite database.
//
// Reads fail soft: a backend error is logged and an empty result is returned,
// so the rest of the pipeline degrades to "no knowledge" instead of crashing.
// Writes return errors, which callers treat as non-fatal.
package knowledge
