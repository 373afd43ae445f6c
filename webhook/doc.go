/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package webhook exposes the agent's only HTTP surface: POST / accepts a
// freeform CI report and triggers triage, GET / and HEAD / answer liveness
// probes for uptime monitoring. Triage runs on a detached goroutine so the
// CI caller gets its response immediately.
package webhook
