/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/menderaf/githubrepo"
	"github.com/chainguard-dev/clog"
)

// Fixer requests a constrained repair for a failing build.
type Fixer interface {
	RepairFile(ctx context.Context, culprit, culpritContent, rawLog string) (string, error)
}

// Reader fetches current file content from the repository.
type Reader interface {
	ReadFile(ctx context.Context, path string) (content, sha string, err error)
}

// Notifier pushes a best-effort status message to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Loop is the webhook-triggered repair sequence.
type Loop struct {
	repo     Reader
	fixer    Fixer
	notifier Notifier
}

// NewLoop returns a triage Loop.
func NewLoop(repo Reader, fixer Fixer, notifier Notifier) *Loop {
	return &Loop{repo: repo, fixer: fixer, notifier: notifier}
}

// HandleReport runs one pass over a failure report: locate the culprit,
// fetch its content, request a fix, and notify the outcome. Missing culprit
// or unreadable content degrade the context rather than aborting.
func (l *Loop) HandleReport(ctx context.Context, rawLog string) {
	log := clog.FromContext(ctx)

	culprit, found := LocateCulprit(rawLog)
	var content string
	switch {
	case !found:
		log.Warn("No culprit file found in failure report, proceeding without one")
		l.notifier.Notify(ctx, "Build failed; no actionable file found in the log, attempting a blind repair.")
	default:
		log.With("path", culprit.Path).With("line", culprit.Line).Info("Culprit identified")
		l.notifier.Notify(ctx, fmt.Sprintf("Build failed; culprit identified: %s:%d", culprit.Path, culprit.Line))

		var err error
		content, _, err = l.repo.ReadFile(ctx, culprit.Path)
		if err != nil {
			if !errors.Is(err, githubrepo.ErrNotFound) {
				log.With("path", culprit.Path).With("error", err).Warn("Fetching culprit content failed")
			}
			content = ""
		}
	}

	summary, err := l.fixer.RepairFile(ctx, culprit.Path, content, rawLog)
	if err != nil {
		log.With("error", err).Error("Repair attempt failed")
		l.notifier.Notify(ctx, fmt.Sprintf("Repair attempt failed: %v", err))
		return
	}

	l.notifier.Notify(ctx, "Repair pass finished:\n"+summary)
}

// HandleSuccess acknowledges a passing build. No repository calls are made.
func (l *Loop) HandleSuccess(ctx context.Context, _ string) {
	clog.FromContext(ctx).Info("Build succeeded")
	l.notifier.Notify(ctx, "Build is green again. Nothing stops this team.")
}
