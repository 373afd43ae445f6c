/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"chainguard.dev/menderaf/inference"
	"chainguard.dev/menderaf/knowledge"
	"chainguard.dev/menderaf/patch"
	"chainguard.dev/menderaf/promptbuilder"
	"chainguard.dev/menderaf/protocol"
	"github.com/chainguard-dev/clog"
)

// Store is the slice of the knowledge store the brain consumes.
type Store interface {
	SearchFacts(ctx context.Context, keywords []string, limit int) []knowledge.Fact
	RecentFacts(ctx context.Context, limit int) []knowledge.Fact
	PendingWorkItems(ctx context.Context) []knowledge.WorkItem
}

// TreeLister lists repository paths for prompt context.
type TreeLister interface {
	ListTree(ctx context.Context, limit int) ([]string, error)
}

// Brain assembles context, calls inference, and applies the reply.
type Brain struct {
	store   Store
	repo    TreeLister
	applier *patch.Applier
	llm     inference.Client

	treeLimit    int
	factLimit    int
	historyTurns int

	mu      sync.Mutex
	history []string
}

// Option adjusts Brain construction.
type Option func(*Brain)

// WithTreeLimit caps the repository listing included in prompts.
func WithTreeLimit(n int) Option { return func(b *Brain) { b.treeLimit = n } }

// WithFactLimit caps how many facts retrieval contributes.
func WithFactLimit(n int) Option { return func(b *Brain) { b.factLimit = n } }

// New returns a Brain wired to its collaborators.
func New(store Store, repo TreeLister, applier *patch.Applier, llm inference.Client, opts ...Option) *Brain {
	b := &Brain{
		store:        store,
		repo:         repo,
		applier:      applier,
		llm:          llm,
		treeLimit:    200,
		factLimit:    8,
		historyTurns: 10, // five exchanges
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Respond handles one interactive turn: assemble context, complete, apply
// directives, and return the scrubbed reply plus per-directive result lines.
func (b *Brain) Respond(ctx context.Context, userName, input string) (string, error) {
	log := clog.FromContext(ctx)

	facts := b.relevantFacts(ctx, input)
	items := b.store.PendingWorkItems(ctx)

	tree, err := b.repo.ListTree(ctx, b.treeLimit)
	if err != nil {
		log.With("error", err).Warn("Repository listing failed, continuing without it")
		tree = nil
	}

	userPrompt, err := buildChatPrompt(tree, items, facts, b.snapshotHistory(), userName, input)
	if err != nil {
		return "", fmt.Errorf("building prompt: %w", err)
	}

	reply, err := b.llm.Complete(ctx, inference.Request{
		System: systemPrompt(),
		User:   userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("completing chat turn: %w", err)
	}

	summary := b.processReply(ctx, reply)
	b.recordTurn(userName, input, summary)
	return summary, nil
}

// RepairFile runs the constrained error-triage prompt for a failing build.
// culprit and culpritContent may be empty when triage could not pin down a
// file; the model then works from the log alone.
func (b *Brain) RepairFile(ctx context.Context, culprit, culpritContent, rawLog string) (string, error) {
	tmpl, err := promptbuilder.NewPrompt(repairUserTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing repair template: %w", err)
	}

	named := culprit
	if named == "" {
		named = "(no file could be identified from the log)"
	}
	userPrompt, err := bindAll(tmpl, map[string]any{
		"raw_log":         rawLog,
		"culprit":         named,
		"culprit_content": culpritContent,
	})
	if err != nil {
		return "", fmt.Errorf("binding repair prompt: %w", err)
	}

	reply, err := b.llm.Complete(ctx, inference.Request{
		System: systemPrompt(),
		User:   userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("completing repair: %w", err)
	}

	return b.processReply(ctx, reply), nil
}

// processReply applies any directives in the reply and returns the scrubbed
// text with one result line per directive appended.
func (b *Brain) processReply(ctx context.Context, reply string) string {
	directives, rejections := protocol.Parse(reply)
	lines := b.applier.Apply(ctx, directives, rejections)

	out := protocol.Strip(reply)
	if len(lines) > 0 {
		out = strings.TrimSpace(out + "\n\n" + strings.Join(lines, "\n"))
	}
	return out
}

func systemPrompt() string {
	return identityPreamble + "\n\n" + constraintsBlock + "\n\n" + protocolRules
}

func buildChatPrompt(tree []string, items []knowledge.WorkItem, facts []knowledge.Fact, history []string, userName, input string) (string, error) {
	tmpl, err := promptbuilder.NewPrompt(chatUserTemplate)
	if err != nil {
		return "", err
	}

	workItems := make([]string, 0, len(items))
	for _, it := range items {
		workItems = append(workItems, fmt.Sprintf("#%d %s", it.ID, it.Description))
	}
	factLines := make([]string, 0, len(facts))
	for _, f := range facts {
		factLines = append(factLines, f.Content)
	}

	return bindAll(tmpl, map[string]any{
		"tree":       tree,
		"work_items": workItems,
		"facts":      factLines,
		"history":    history,
		"user_name":  userName,
		"user_input": input,
	})
}

func bindAll(tmpl *promptbuilder.Prompt, bindings map[string]any) (string, error) {
	var err error
	for name, data := range bindings {
		if tmpl, err = tmpl.BindJSON(name, data); err != nil {
			return "", err
		}
	}
	return tmpl.Build()
}

func (b *Brain) snapshotHistory() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

// recordTurn appends the exchange to the rolling history window.
func (b *Brain) recordTurn(userName, input, reply string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history,
		fmt.Sprintf("%s: %s", userName, input),
		fmt.Sprintf("Lia: %s", reply))
	if over := len(b.history) - b.historyTurns; over > 0 {
		b.history = append([]string(nil), b.history[over:]...)
	}
}
