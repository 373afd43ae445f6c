/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package protocol extracts structured file directives from free-form model
// output.
//
// The wire grammar is line-oriented and case-sensitive:
//
//	[[FILE: path/to/file.c]]
//	...raw file content...
//	[[ENDFILE]]
//
// plus standalone [[DELETE: path]] lines anywhere in the text. Models do not
// reliably obey the "no code fences" instruction, so captured content is
// sanitized before use, and content that looks truncated, elided, or
// dangerous is rejected rather than applied.
package protocol
