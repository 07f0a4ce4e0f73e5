package view

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dheater/viewyard/internal/git"
)

// StatusCode is the closed set of per-repository states.
type StatusCode int

const (
	StatusClean StatusCode = iota
	StatusDirty
	StatusAhead
	StatusBehind
	StatusDirtyAndAhead
	StatusDiverged
	StatusError
)

// Status is a repository's state relative to its view branch and
// upstream. Computed fresh on every invocation, never persisted.
type Status struct {
	Code   StatusCode
	Ahead  int
	Behind int
	Reason string // set for StatusError
}

func (s Status) String() string {
	switch s.Code {
	case StatusClean:
		return "clean"
	case StatusDirty:
		if s.Behind > 0 {
			return fmt.Sprintf("dirty, behind %d", s.Behind)
		}
		return "dirty"
	case StatusAhead:
		return fmt.Sprintf("ahead %d", s.Ahead)
	case StatusBehind:
		return fmt.Sprintf("behind %d", s.Behind)
	case StatusDirtyAndAhead:
		return fmt.Sprintf("dirty, ahead %d", s.Ahead)
	case StatusDiverged:
		return fmt.Sprintf("diverged (ahead %d, behind %d)", s.Ahead, s.Behind)
	case StatusError:
		return "error: " + s.Reason
	}
	return "unknown"
}

// IsUnclean reports whether the repository would lose local work if its
// clone were removed.
func (s Status) IsUnclean() bool {
	switch s.Code {
	case StatusDirty, StatusAhead, StatusDirtyAndAhead, StatusDiverged:
		return true
	}
	return false
}

func statusError(reason string) Status {
	return Status{Code: StatusError, Reason: reason}
}

// RepoStatus computes the status of one repository instance.
//
// A checked-out branch that differs from the recorded view branch is
// reported as error "branch-mismatch" and never corrected: the drift was
// caused outside viewyard and silently switching branches could discard
// the user's context.
func RepoStatus(ctx context.Context, viewDir string, entry RepoEntry) Status {
	path := filepath.Join(viewDir, entry.Dir)

	if !git.IsRepo(path) {
		return statusError("not-a-repository")
	}

	branch, err := git.CurrentBranch(ctx, path)
	if err != nil {
		return statusError(failureReason(err))
	}
	if branch != entry.Branch {
		return statusError("branch-mismatch")
	}

	dirty, err := git.IsDirty(ctx, path)
	if err != nil {
		return statusError(failureReason(err))
	}

	var ahead, behind int
	if git.HasUpstream(ctx, path, branch) {
		ahead, behind, err = git.AheadBehind(ctx, path)
		if err != nil {
			return statusError(failureReason(err))
		}
	}

	switch {
	case ahead > 0 && behind > 0:
		return Status{Code: StatusDiverged, Ahead: ahead, Behind: behind}
	case dirty && ahead > 0:
		return Status{Code: StatusDirtyAndAhead, Ahead: ahead}
	case dirty:
		// Keep the behind count visible, like DirtyAndAhead keeps ahead.
		return Status{Code: StatusDirty, Behind: behind}
	case ahead > 0:
		return Status{Code: StatusAhead, Ahead: ahead}
	case behind > 0:
		return Status{Code: StatusBehind, Behind: behind}
	}
	return Status{Code: StatusClean}
}

// RepoStatusEntry pairs a repository with its computed status.
type RepoStatusEntry struct {
	Name   string
	Branch string
	Status Status
}

// StatusAll computes every repository's status with bounded parallelism.
// Entries keep the manifest's repository order.
func StatusAll(ctx context.Context, viewDir string, m *Manifest, concurrency int) []RepoStatusEntry {
	return forEachRepo(ctx, concurrency, m.Repos, func(ctx context.Context, entry RepoEntry) RepoStatusEntry {
		if ctx.Err() != nil {
			return RepoStatusEntry{Name: entry.Name, Branch: entry.Branch, Status: statusError("cancelled")}
		}
		return RepoStatusEntry{
			Name:   entry.Name,
			Branch: entry.Branch,
			Status: RepoStatus(ctx, viewDir, entry),
		}
	})
}

// Counts tallies entries per status class for the summary line.
type Counts struct {
	Clean, Dirty, Ahead, Behind, DirtyAndAhead, Diverged, Errors int
}

// Count folds status entries into per-class totals.
func Count(entries []RepoStatusEntry) Counts {
	var c Counts
	for _, e := range entries {
		switch e.Status.Code {
		case StatusClean:
			c.Clean++
		case StatusDirty:
			c.Dirty++
		case StatusAhead:
			c.Ahead++
		case StatusBehind:
			c.Behind++
		case StatusDirtyAndAhead:
			c.DirtyAndAhead++
		case StatusDiverged:
			c.Diverged++
		case StatusError:
			c.Errors++
		}
	}
	return c
}

// HasErrors reports whether any entry is in the error state.
func HasErrors(entries []RepoStatusEntry) bool {
	for _, e := range entries {
		if e.Status.Code == StatusError {
			return true
		}
	}
	return false
}
