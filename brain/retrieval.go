/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package brain

import (
	"context"
	"strings"
	"unicode"

	"chainguard.dev/menderaf/knowledge"
)

// minKeywordLength filters out stop-word noise; only longer words carry
// enough signal for the keyword-overlap search.
const minKeywordLength = 5

// relevantFacts implements the two-tier retrieval policy: a keyword-ranked
// search over words from the input, falling back to the most recent facts
// when the search yields nothing. It never fails; the worst case is an
// empty slice.
func (b *Brain) relevantFacts(ctx context.Context, input string) []knowledge.Fact {
	if facts := b.store.SearchFacts(ctx, extractKeywords(input), b.factLimit); len(facts) > 0 {
		return facts
	}
	return b.store.RecentFacts(ctx, b.factLimit)
}

// extractKeywords pulls the distinct words of at least minKeywordLength
// runes out of input, preserving first-seen order.
func extractKeywords(input string) []string {
	words := strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]struct{}, len(words))
	var keywords []string
	for _, w := range words {
		if len([]rune(w)) < minKeywordLength {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}
