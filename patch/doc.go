/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package patch applies parsed directives against the repository: a
// backup-then-write for each file replacement and a tolerant delete for each
// removal. Every directive yields one human-readable result line that the
// caller aggregates into a single summary for the operator.
package patch
