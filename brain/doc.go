/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package brain assembles the agent's context into a prompt, runs exactly
// one inference call, and routes the reply through the patch machinery.
//
// Each invocation gathers the identity preamble, the hardware and library
// constraints block, a capped repository listing, pending work items, and a
// best-effort set of relevant facts. The model's reply is parsed for patch
// directives, applied, and then scrubbed so raw source code never echoes
// back into chat transcripts.
package brain
