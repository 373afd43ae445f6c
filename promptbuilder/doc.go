/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder provides injection-resistant prompt construction,
// similar in spirit to SQL prepared statements but for LLM prompts.
//
// Templates are literal strings with {{name}} placeholders. Developer-owned
// text is bound with BindStringLiteral; anything derived from user input,
// repository content, or model output is bound with BindJSON so it passes
// through a standard encoder and cannot smuggle new instructions into the
// template structure. Prompts are immutable: every binding method returns a
// new Prompt, and Build fails if any placeholder is left unbound.
package promptbuilder
