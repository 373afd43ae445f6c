/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubrepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

var (
	// ErrNotFound indicates the path does not exist on the branch.
	ErrNotFound = errors.New("file not found")

	// ErrConflict indicates the file changed between read and write.
	ErrConflict = errors.New("file changed concurrently")
)

// WriteResult reports what a WriteFile call did.
type WriteResult int

const (
	// WriteCreated means the path did not exist and was created.
	WriteCreated WriteResult = iota
	// WriteUpdated means the existing file was replaced.
	WriteUpdated
)

// Adapter provides file CRUD against a fixed owner/repo/branch.
type Adapter struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
}

// New returns an Adapter for the given repository coordinates.
func New(gh *github.Client, owner, repo, branch string) *Adapter {
	return &Adapter{gh: gh, owner: owner, repo: repo, branch: branch}
}

// ReadFile fetches the current content and blob SHA of path.
func (a *Adapter) ReadFile(ctx context.Context, path string) (string, string, error) {
	file, _, _, err := a.gh.Repositories.GetContents(ctx, a.owner, a.repo, path,
		&github.RepositoryContentGetOptions{Ref: a.branch})
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("fetching %s: %w", path, err)
	}
	if file == nil {
		// Path resolved to a directory.
		return "", "", ErrNotFound
	}
	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return content, file.GetSHA(), nil
}

// ListTree returns up to limit blob paths from a recursive tree listing
// anchored at the branch's most recent commit. The listing is best-effort: a
// truncated server response yields whatever the server returned.
func (a *Adapter) ListTree(ctx context.Context, limit int) ([]string, error) {
	sha, _, err := a.gh.Repositories.GetCommitSHA1(ctx, a.owner, a.repo, a.branch, "")
	if err != nil {
		return nil, fmt.Errorf("resolving head of %s: %w", a.branch, err)
	}

	tree, _, err := a.gh.Git.GetTree(ctx, a.owner, a.repo, sha, true)
	if err != nil {
		return nil, fmt.Errorf("listing tree at %s: %w", sha, err)
	}
	if tree.GetTruncated() {
		clog.FromContext(ctx).With("sha", sha).Warn("Tree listing truncated by server")
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		paths = append(paths, entry.GetPath())
		if limit > 0 && len(paths) >= limit {
			break
		}
	}
	return paths, nil
}

// WriteFile creates or replaces path with content. An existing file is
// updated against the blob SHA observed just before the write; if the file
// changes in between, the error wraps ErrConflict.
func (a *Adapter) WriteFile(ctx context.Context, path, content, message string) (WriteResult, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
		Branch:  github.Ptr(a.branch),
	}

	_, sha, err := a.ReadFile(ctx, path)
	switch {
	case errors.Is(err, ErrNotFound):
		if _, _, err := a.gh.Repositories.CreateFile(ctx, a.owner, a.repo, path, opts); err != nil {
			return 0, fmt.Errorf("creating %s: %w", path, err)
		}
		return WriteCreated, nil
	case err != nil:
		return 0, err
	}

	opts.SHA = github.Ptr(sha)
	if _, _, err := a.gh.Repositories.UpdateFile(ctx, a.owner, a.repo, path, opts); err != nil {
		if isStatus(err, http.StatusConflict) || isStatus(err, http.StatusUnprocessableEntity) {
			return 0, fmt.Errorf("updating %s: %w", path, ErrConflict)
		}
		return 0, fmt.Errorf("updating %s: %w", path, err)
	}
	return WriteUpdated, nil
}

// DeleteFile removes path from the branch. A missing path returns
// ErrNotFound, which callers treat as already satisfied.
func (a *Adapter) DeleteFile(ctx context.Context, path, message string) error {
	_, sha, err := a.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		SHA:     github.Ptr(sha),
		Branch:  github.Ptr(a.branch),
	}
	if _, _, err := a.gh.Repositories.DeleteFile(ctx, a.owner, a.repo, path, opts); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func isStatus(err error, code int) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == code
}
