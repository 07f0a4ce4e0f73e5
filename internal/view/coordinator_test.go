package view

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dheater/viewyard/internal/git"
)

func TestCommitAll(t *testing.T) {
	setHome(t)
	origin1 := seedOrigin(t)
	origin2 := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin1, origin2)
	ctx := context.Background()

	// repo1 gets a tracked change, repo2 stays clean
	writeFile(t, filepath.Join(viewDir, m.Repos[0].Dir, "README.md"), "# changed\n")

	c := NewCoordinator(viewDir, m, 2)
	outcomes := c.CommitAll(ctx, "Update readme", false)

	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	if outcomes[0].State != StateOk {
		t.Errorf("repo1 = %+v, want ok", outcomes[0])
	}
	if outcomes[1].State != StateSkipped || outcomes[1].Reason != "clean" {
		t.Errorf("repo2 = %+v, want skipped clean", outcomes[1])
	}
	if AnyFailed(outcomes) {
		t.Error("AnyFailed() = true, want false")
	}

	// The commit landed
	dirty, err := git.IsDirty(ctx, filepath.Join(viewDir, m.Repos[0].Dir))
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("repo1 still dirty after commit-all")
	}
}

func TestCommitAll_UntrackedPolicy(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	// Only an untracked file
	writeFile(t, filepath.Join(repoPath, "scratch.txt"), "x\n")

	c := NewCoordinator(viewDir, m, 1)

	// Default policy leaves untracked files alone
	outcomes := c.CommitAll(ctx, "Scratch", false)
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "clean" {
		t.Fatalf("outcome = %+v, want skipped clean", outcomes[0])
	}
	dirty, err := git.IsDirty(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Fatal("untracked file was committed without opt-in")
	}

	// Explicit opt-in includes it
	outcomes = c.CommitAll(ctx, "Scratch", true)
	if outcomes[0].State != StateOk {
		t.Fatalf("outcome = %+v, want ok", outcomes[0])
	}
	dirty, err = git.IsDirty(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("repo still dirty after commit-all with untracked opt-in")
	}
}

func TestCommitAll_Cancelled(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.CommitAll(ctx, "Never lands", false)

	if len(outcomes) != 1 {
		t.Fatalf("len(outcomes) = %d, want 1 (never silently omitted)", len(outcomes))
	}
	if outcomes[0].State != StateFailed || outcomes[0].Reason != "cancelled" {
		t.Errorf("outcome = %+v, want failed cancelled", outcomes[0])
	}
}

func TestPushAll_FirstPushSetsUpstream(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	writeFile(t, filepath.Join(repoPath, "a.txt"), "a\n")
	gitRun(t, repoPath, "add", "a.txt")
	gitRun(t, repoPath, "commit", "-m", "Add a")

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.PushAll(ctx)
	if outcomes[0].State != StateOk {
		t.Fatalf("outcome = %+v, want ok", outcomes[0])
	}

	if !git.HasUpstream(ctx, repoPath, "task1") {
		t.Error("task1 has no upstream after first push")
	}
}

func TestPushAll_NothingToPublish(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	ctx := context.Background()

	// Fresh view: branch task1 matches origin/main exactly
	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.PushAll(ctx)
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "no-upstream-changes" {
		t.Errorf("outcome = %+v, want skipped no-upstream-changes", outcomes[0])
	}
}

func TestPushAll_UpstreamConfigured(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	gitRun(t, repoPath, "push", "-u", "origin", "task1")

	c := NewCoordinator(viewDir, m, 1)

	// In sync with upstream
	outcomes := c.PushAll(ctx)
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "no-upstream-changes" {
		t.Fatalf("outcome = %+v, want skipped no-upstream-changes", outcomes[0])
	}

	// One commit ahead
	writeFile(t, filepath.Join(repoPath, "a.txt"), "a\n")
	gitRun(t, repoPath, "add", "a.txt")
	gitRun(t, repoPath, "commit", "-m", "Add a")

	outcomes = c.PushAll(ctx)
	if outcomes[0].State != StateOk {
		t.Fatalf("outcome = %+v, want ok", outcomes[0])
	}

	ahead, _, err := git.AheadBehind(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if ahead != 0 {
		t.Errorf("still %d ahead after push-all", ahead)
	}
}

func TestPushAll_NoRemote(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	gitRun(t, repoPath, "remote", "remove", "origin")

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.PushAll(ctx)
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "no-upstream" {
		t.Errorf("outcome = %+v, want skipped no-upstream", outcomes[0])
	}
}

// advanceOrigin pushes a new commit to the origin's main branch through a
// separate clone.
func advanceOrigin(t *testing.T, origin, file, content string) {
	t.Helper()
	work := filepath.Join(resolvedTempDir(t), "work")
	gitRun(t, "", "clone", origin, work)
	writeFile(t, filepath.Join(work, file), content)
	gitRun(t, work, "add", file)
	gitRun(t, work, "commit", "-m", "Advance "+file)
	gitRun(t, work, "push", "origin", "main")
}

func TestRebase(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	advanceOrigin(t, origin, "upstream.txt", "from upstream\n")

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.Rebase(ctx)
	if outcomes[0].State != StateOk {
		t.Fatalf("outcome = %+v, want ok", outcomes[0])
	}

	// The upstream commit is now part of the view branch
	if _, err := os.Stat(filepath.Join(repoPath, "upstream.txt")); err != nil {
		t.Errorf("upstream.txt missing after rebase: %v", err)
	}
	branch, err := git.CurrentBranch(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if branch != "task1" {
		t.Errorf("branch = %q after rebase, want task1", branch)
	}
}

func TestRebase_SkipsDirty(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	ctx := context.Background()

	writeFile(t, filepath.Join(viewDir, m.Repos[0].Dir, "wip.txt"), "x\n")

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.Rebase(ctx)
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "dirty" {
		t.Errorf("outcome = %+v, want skipped dirty", outcomes[0])
	}
}

func TestRebase_ConflictLeftInPlace(t *testing.T) {
	setHome(t)
	origin := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin)
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	ctx := context.Background()

	// Both sides rewrite README.md
	writeFile(t, filepath.Join(repoPath, "README.md"), "# local version\n")
	gitRun(t, repoPath, "add", "README.md")
	gitRun(t, repoPath, "commit", "-m", "Local readme")
	advanceOrigin(t, origin, "README.md", "# upstream version\n")

	c := NewCoordinator(viewDir, m, 1)
	outcomes := c.Rebase(ctx)
	if outcomes[0].State != StateFailed {
		t.Fatalf("outcome = %+v, want failed", outcomes[0])
	}
	if outcomes[0].Reason != "conflict" {
		t.Errorf("reason = %q, want conflict", outcomes[0].Reason)
	}

	// The repository stays in its conflicted state for manual resolution
	inRebase := false
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(repoPath, ".git", marker)); err == nil {
			inRebase = true
		}
	}
	if !inRebase {
		t.Error("no rebase in progress after conflict, expected repo left mid-rebase")
	}
}

func TestDiffs(t *testing.T) {
	setHome(t)
	origin1 := seedOrigin(t)
	origin2 := seedOrigin(t)
	viewDir, m := createTestView(t, "task1", origin1, origin2)
	ctx := context.Background()

	writeFile(t, filepath.Join(viewDir, m.Repos[0].Dir, "README.md"), "# modified\n")

	c := NewCoordinator(viewDir, m, 1)
	diffs := c.Diffs(ctx)
	if len(diffs) != 1 {
		t.Fatalf("len(diffs) = %d, want 1 (only the dirty repo)", len(diffs))
	}
	if diffs[0].Name != m.Repos[0].Name {
		t.Errorf("diff repo = %q, want %q", diffs[0].Name, m.Repos[0].Name)
	}
	if diffs[0].Err != nil {
		t.Fatalf("diff error: %v", diffs[0].Err)
	}
	if !strings.Contains(diffs[0].Diff, "modified") {
		t.Errorf("diff does not contain the change:\n%s", diffs[0].Diff)
	}
}

func TestOutcomeStateString(t *testing.T) {
	t.Parallel()

	if got := StateOk.String(); got != "ok" {
		t.Errorf("StateOk = %q", got)
	}
	if got := StateSkipped.String(); got != "skipped" {
		t.Errorf("StateSkipped = %q", got)
	}
	if got := StateFailed.String(); got != "failed" {
		t.Errorf("StateFailed = %q", got)
	}
}

func TestFailureReason(t *testing.T) {
	t.Parallel()

	err := &git.Error{Kind: git.KindMergeConflict, Msg: "CONFLICT (content): Merge conflict in main.go"}
	if got := failureReason(err); got != "conflict" {
		t.Errorf("failureReason(conflict) = %q, want conflict", got)
	}

	plain := errors.New("first line\nsecond line")
	if got := failureReason(plain); got != "first line" {
		t.Errorf("failureReason(plain) = %q, want first line only", got)
	}
}
