/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patch

import (
	"context"
	"strings"
	"testing"
	"time"

	"chainguard.dev/menderaf/githubrepo"
	"chainguard.dev/menderaf/protocol"
	"github.com/google/go-cmp/cmp"
)

// fakeRepo is an in-memory Repo that records every mutation.
type fakeRepo struct {
	files  map[string]string
	writes []string // paths, in call order
	fail   map[string]error
}

func newFakeRepo(files map[string]string) *fakeRepo {
	if files == nil {
		files = map[string]string{}
	}
	return &fakeRepo{files: files, fail: map[string]error{}}
}

func (r *fakeRepo) ReadFile(_ context.Context, path string) (string, string, error) {
	if err := r.fail["read:"+path]; err != nil {
		return "", "", err
	}
	content, ok := r.files[path]
	if !ok {
		return "", "", githubrepo.ErrNotFound
	}
	return content, "sha-" + path, nil
}

func (r *fakeRepo) WriteFile(_ context.Context, path, content, _ string) (githubrepo.WriteResult, error) {
	if err := r.fail["write:"+path]; err != nil {
		return 0, err
	}
	r.writes = append(r.writes, path)
	_, existed := r.files[path]
	r.files[path] = content
	if existed {
		return githubrepo.WriteUpdated, nil
	}
	return githubrepo.WriteCreated, nil
}

func (r *fakeRepo) DeleteFile(_ context.Context, path, _ string) error {
	if err := r.fail["delete:"+path]; err != nil {
		return err
	}
	if _, ok := r.files[path]; !ok {
		return githubrepo.ErrNotFound
	}
	delete(r.files, path)
	return nil
}

func (r *fakeRepo) backups() []string {
	var out []string
	for path := range r.files {
		if strings.HasPrefix(path, "backups/") {
			out = append(out, path)
		}
	}
	return out
}

func newTestApplier(repo *fakeRepo) *Applier {
	a := New(repo)
	a.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return a
}

const body = "int main(void) {\n  return 0;\n}\n"

func TestApplyCreateNewFile(t *testing.T) {
	repo := newFakeRepo(nil)
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(),
		[]protocol.Directive{{Kind: protocol.Write, Path: "main.c", Content: body}}, nil)

	if diff := cmp.Diff([]string{"Created: main.c"}, lines); diff != "" {
		t.Errorf("Apply() lines (-want +got):\n%s", diff)
	}
	// New path: no backup may be written.
	if got := repo.backups(); len(got) != 0 {
		t.Errorf("backups = %v, want none for a new file", got)
	}
}

func TestApplyUpdateWritesExactlyOneBackup(t *testing.T) {
	repo := newFakeRepo(map[string]string{"src/main.c": "old content"})
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(),
		[]protocol.Directive{{Kind: protocol.Write, Path: "src/main.c", Content: body}}, nil)

	if diff := cmp.Diff([]string{"Updated: src/main.c"}, lines); diff != "" {
		t.Errorf("Apply() lines (-want +got):\n%s", diff)
	}

	backups := repo.backups()
	if len(backups) != 1 {
		t.Fatalf("backups = %v, want exactly one", backups)
	}
	want := "backups/src_main.c_20260314T092653.bak"
	if backups[0] != want {
		t.Errorf("backup path = %q, want %q", backups[0], want)
	}
	if repo.files[backups[0]] != "old content" {
		t.Errorf("backup content = %q, want the pre-write content", repo.files[backups[0]])
	}
	// Backup lands before the main write.
	if diff := cmp.Diff([]string{want, "src/main.c"}, repo.writes); diff != "" {
		t.Errorf("write order (-want +got):\n%s", diff)
	}
}

func TestApplyBackupFailureDoesNotBlockWrite(t *testing.T) {
	repo := newFakeRepo(map[string]string{"main.c": "old"})
	repo.fail["write:backups/main.c_20260314T092653.bak"] = context.DeadlineExceeded
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(),
		[]protocol.Directive{{Kind: protocol.Write, Path: "main.c", Content: body}}, nil)

	if diff := cmp.Diff([]string{"Updated: main.c"}, lines); diff != "" {
		t.Errorf("Apply() lines (-want +got):\n%s", diff)
	}
	if repo.files["main.c"] != body {
		t.Error("main write did not land after backup failure")
	}
}

func TestApplyDelete(t *testing.T) {
	repo := newFakeRepo(map[string]string{"junk.c": "bye"})
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(), []protocol.Directive{
		{Kind: protocol.Delete, Path: "junk.c"},
		{Kind: protocol.Delete, Path: "never-there.c"},
	}, nil)

	want := []string{
		"Deleted: junk.c",
		"Deleted: never-there.c (was already absent)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Apply() lines (-want +got):\n%s", diff)
	}
}

func TestApplyConflictReported(t *testing.T) {
	repo := newFakeRepo(map[string]string{"main.c": "old"})
	repo.fail["write:main.c"] = githubrepo.ErrConflict
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(),
		[]protocol.Directive{{Kind: protocol.Write, Path: "main.c", Content: body}}, nil)

	if len(lines) != 1 || !strings.Contains(lines[0], "Conflict: main.c") {
		t.Errorf("Apply() lines = %v, want conflict report", lines)
	}
}

func TestApplyNothingTouchesNothing(t *testing.T) {
	repo := newFakeRepo(map[string]string{"main.c": "untouched"})
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(), nil, nil)
	if len(lines) != 0 {
		t.Errorf("Apply(nil) lines = %v, want none", lines)
	}
	if len(repo.writes) != 0 {
		t.Errorf("Apply(nil) performed writes: %v", repo.writes)
	}
}

func TestApplyReportsRejections(t *testing.T) {
	repo := newFakeRepo(nil)
	a := newTestApplier(repo)

	lines := a.Apply(context.Background(), nil,
		[]protocol.Rejection{{Path: "main.c", Reason: "content contains an elision placeholder"}})

	if len(lines) != 1 || !strings.Contains(lines[0], "Rejected main.c") {
		t.Errorf("Apply() lines = %v, want rejection report", lines)
	}
	if len(repo.writes) != 0 {
		t.Errorf("rejection caused writes: %v", repo.writes)
	}
}
