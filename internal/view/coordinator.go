package view

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dheater/viewyard/internal/git"
)

// Coordinator runs one git operation across every repository of a view.
// Each operation is a total fold: one Outcome per repository, in
// manifest order, with no retries and no early abort.
type Coordinator struct {
	ViewDir     string
	Manifest    *Manifest
	Concurrency int
}

// NewCoordinator builds a coordinator for a loaded view.
func NewCoordinator(viewDir string, m *Manifest, concurrency int) *Coordinator {
	return &Coordinator{ViewDir: viewDir, Manifest: m, Concurrency: concurrency}
}

func (c *Coordinator) path(entry RepoEntry) string {
	return filepath.Join(c.ViewDir, entry.Dir)
}

func (c *Coordinator) run(ctx context.Context, fn func(context.Context, RepoEntry) Outcome) []Outcome {
	return forEachRepo(ctx, c.Concurrency, c.Manifest.Repos, func(ctx context.Context, entry RepoEntry) Outcome {
		if ctx.Err() != nil {
			return Outcome{Repo: entry.Name, State: StateFailed, Reason: "cancelled"}
		}
		return fn(ctx, entry)
	})
}

// CommitAll commits every dirty repository with the same message. Clean
// repositories are skipped. By default only tracked changes are staged;
// includeUntracked opts untracked files in.
func (c *Coordinator) CommitAll(ctx context.Context, message string, includeUntracked bool) []Outcome {
	return c.run(ctx, func(ctx context.Context, entry RepoEntry) Outcome {
		path := c.path(entry)

		dirty, err := git.IsDirty(ctx, path)
		if err != nil {
			return failed(entry.Name, err)
		}
		if !dirty {
			return skipped(entry.Name, "clean")
		}

		if includeUntracked {
			err = git.StageAll(ctx, path)
		} else {
			err = git.StageTracked(ctx, path)
		}
		if err != nil {
			return failed(entry.Name, err)
		}

		// Only untracked files present and untracked staging off leaves
		// an empty index; git commit reports that on stdout, so check
		// explicitly instead of classifying the failure.
		staged, err := git.HasStagedChanges(ctx, path)
		if err != nil {
			return failed(entry.Name, err)
		}
		if !staged {
			return skipped(entry.Name, "clean")
		}

		if err := git.Commit(ctx, path, message); err != nil {
			return failed(entry.Name, err)
		}
		return ok(entry.Name)
	})
}

// PushAll pushes every repository that has commits to publish. The first
// push of a branch sets its upstream. Repositories without a remote are
// skipped, not failed.
func (c *Coordinator) PushAll(ctx context.Context) []Outcome {
	return c.run(ctx, func(ctx context.Context, entry RepoEntry) Outcome {
		path := c.path(entry)

		if !git.HasRemote(ctx, path) {
			return skipped(entry.Name, "no-upstream")
		}

		branch, err := git.CurrentBranch(ctx, path)
		if err != nil {
			return failed(entry.Name, err)
		}

		if git.HasUpstream(ctx, path, branch) {
			ahead, _, err := git.AheadBehind(ctx, path)
			if err != nil {
				return failed(entry.Name, err)
			}
			if ahead == 0 {
				return skipped(entry.Name, "no-upstream-changes")
			}
			if err := git.Push(ctx, path); err != nil {
				return failed(entry.Name, err)
			}
			return ok(entry.Name)
		}

		// No upstream yet: compare against the remote default branch to
		// decide whether there is anything to publish, then push -u.
		defBranch, err := git.DefaultRemoteBranch(ctx, path)
		if err == nil {
			count, err := git.CountCommits(ctx, path, "origin/"+defBranch+"..HEAD")
			if err != nil {
				return failed(entry.Name, err)
			}
			if count == 0 {
				return skipped(entry.Name, "no-upstream-changes")
			}
		} else if !errors.Is(err, git.ErrNoDefaultBranch) {
			return failed(entry.Name, err)
		}

		if err := git.PushSetUpstream(ctx, path, branch); err != nil {
			return failed(entry.Name, err)
		}
		return ok(entry.Name)
	})
}

// Rebase fetches each repository's remote default branch and rebases the
// current branch onto it. Dirty repositories are skipped so uncommitted
// work is never entangled in a rebase. A conflict fails the repository
// and leaves it in its conflicted state for manual resolution.
func (c *Coordinator) Rebase(ctx context.Context) []Outcome {
	return c.run(ctx, func(ctx context.Context, entry RepoEntry) Outcome {
		path := c.path(entry)

		dirty, err := git.IsDirty(ctx, path)
		if err != nil {
			return failed(entry.Name, err)
		}
		if dirty {
			return skipped(entry.Name, "dirty")
		}

		// An unresolvable default branch is a failure, not a skip: the
		// repository wanted a rebase and did not get one.
		defBranch, err := git.DefaultRemoteBranch(ctx, path)
		if err != nil {
			return failed(entry.Name, err)
		}

		if err := git.Fetch(ctx, path, defBranch); err != nil {
			return failed(entry.Name, err)
		}
		if err := git.Rebase(ctx, path, "origin/"+defBranch); err != nil {
			return failed(entry.Name, err)
		}
		return ok(entry.Name)
	})
}

// RepoDiff is one dirty repository's working tree diff.
type RepoDiff struct {
	Name string
	Diff string
	Err  error
}

// Diffs collects the working tree diff of every dirty repository,
// sequentially in manifest order. Untracked files do not appear; they
// are surfaced by status instead.
func (c *Coordinator) Diffs(ctx context.Context) []RepoDiff {
	var diffs []RepoDiff
	for _, entry := range c.Manifest.Repos {
		if ctx.Err() != nil {
			break
		}
		path := c.path(entry)

		dirty, err := git.IsDirty(ctx, path)
		if err != nil {
			diffs = append(diffs, RepoDiff{Name: entry.Name, Err: err})
			continue
		}
		if !dirty {
			continue
		}

		out, err := git.Output(ctx, path, "diff", "HEAD")
		if err != nil {
			diffs = append(diffs, RepoDiff{Name: entry.Name, Err: err})
			continue
		}
		diff := string(out)
		if strings.TrimSpace(diff) == "" {
			continue // only untracked changes
		}
		diffs = append(diffs, RepoDiff{Name: entry.Name, Diff: diff})
	}
	return diffs
}
