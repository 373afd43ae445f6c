/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/menderaf/githubrepo"
	"chainguard.dev/menderaf/protocol"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var directiveCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "menderaf_patch_directives_total",
		Help: "Patch directives by outcome",
	},
	[]string{"outcome"},
)

// Repo is the slice of the repository adapter the applier needs.
type Repo interface {
	ReadFile(ctx context.Context, path string) (content, sha string, err error)
	WriteFile(ctx context.Context, path, content, message string) (githubrepo.WriteResult, error)
	DeleteFile(ctx context.Context, path, message string) error
}

// Applier applies directives to a repository.
type Applier struct {
	repo Repo
	now  func() time.Time
}

// New returns an Applier writing through repo.
func New(repo Repo) *Applier {
	return &Applier{repo: repo, now: time.Now}
}

// Apply executes each directive in order and returns one result line per
// directive plus one line per prior rejection. Directives are independent:
// a failure is reported and the remaining directives still run.
func (a *Applier) Apply(ctx context.Context, directives []protocol.Directive, rejections []protocol.Rejection) []string {
	lines := make([]string, 0, len(directives)+len(rejections))

	for _, r := range rejections {
		directiveCounter.WithLabelValues("rejected").Inc()
		lines = append(lines, fmt.Sprintf("Rejected %s: %s", r.Path, r.Reason))
	}

	for _, d := range directives {
		switch d.Kind {
		case protocol.Write:
			lines = append(lines, a.applyWrite(ctx, d))
		case protocol.Delete:
			lines = append(lines, a.applyDelete(ctx, d))
		}
	}
	return lines
}

func (a *Applier) applyWrite(ctx context.Context, d protocol.Directive) string {
	log := clog.FromContext(ctx)

	// Back up whatever we are about to overwrite. Best-effort: a failed
	// backup is logged but does not block the write.
	prior, _, err := a.repo.ReadFile(ctx, d.Path)
	switch {
	case err == nil:
		backup := backupPath(d.Path, a.now().UTC())
		if _, err := a.repo.WriteFile(ctx, backup, prior, fmt.Sprintf("Backup of %s before agent patch", d.Path)); err != nil {
			log.With("path", d.Path).With("backup", backup).With("error", err).
				Warn("Backup write failed, continuing with patch")
		}
	case errors.Is(err, githubrepo.ErrNotFound):
		// New file, nothing to back up.
	default:
		log.With("path", d.Path).With("error", err).Warn("Pre-write read failed, skipping backup")
	}

	result, err := a.repo.WriteFile(ctx, d.Path, d.Content, fmt.Sprintf("Agent patch: %s", d.Path))
	if err != nil {
		if errors.Is(err, githubrepo.ErrConflict) {
			directiveCounter.WithLabelValues("conflict").Inc()
			return fmt.Sprintf("Conflict: %s changed concurrently, patch not applied", d.Path)
		}
		directiveCounter.WithLabelValues("error").Inc()
		return fmt.Sprintf("Error writing %s: %v", d.Path, err)
	}
	if result == githubrepo.WriteCreated {
		directiveCounter.WithLabelValues("created").Inc()
		return fmt.Sprintf("Created: %s", d.Path)
	}
	directiveCounter.WithLabelValues("updated").Inc()
	return fmt.Sprintf("Updated: %s", d.Path)
}

func (a *Applier) applyDelete(ctx context.Context, d protocol.Directive) string {
	err := a.repo.DeleteFile(ctx, d.Path, fmt.Sprintf("Agent delete: %s", d.Path))
	if errors.Is(err, githubrepo.ErrNotFound) {
		// Already satisfied.
		directiveCounter.WithLabelValues("deleted").Inc()
		return fmt.Sprintf("Deleted: %s (was already absent)", d.Path)
	}
	if err != nil {
		directiveCounter.WithLabelValues("error").Inc()
		return fmt.Sprintf("Error deleting %s: %v", d.Path, err)
	}
	directiveCounter.WithLabelValues("deleted").Inc()
	return fmt.Sprintf("Deleted: %s", d.Path)
}

// backupPath derives the audit-trail location for a pre-overwrite copy.
// Slashes flatten to underscores so the whole trail lives under backups/.
func backupPath(path string, ts time.Time) string {
	flat := strings.ReplaceAll(path, "/", "_")
	return fmt.Sprintf("backups/%s_%s.bak", flat, ts.Format("20060102T150405"))
}
