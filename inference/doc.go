/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package inference wraps the supported text-completion services behind one
// tiny contract: role-tagged turns in, a single text completion out. No
// streaming, no tool calling; the repair protocol is enforced by prompt
// instruction alone.
//
// Three backends are provided (Anthropic, OpenAI-compatible, Gemini), each
// with exponential-backoff retry on rate-limit and transient server errors
// and a fixed transport timeout on every outbound call.
package inference
