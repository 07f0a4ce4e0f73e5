package view

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dheater/viewyard/internal/git"
)

// OutcomeState classifies a per-repository result.
type OutcomeState int

const (
	StateOk OutcomeState = iota
	StateSkipped
	StateFailed
)

func (s OutcomeState) String() string {
	switch s {
	case StateOk:
		return "ok"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the unit every multi-repo operation collects, one per
// repository, in input order.
type Outcome struct {
	Repo   string
	State  OutcomeState
	Reason string // empty for plain Ok
}

func ok(repo string) Outcome {
	return Outcome{Repo: repo, State: StateOk}
}

func okReason(repo, reason string) Outcome {
	return Outcome{Repo: repo, State: StateOk, Reason: reason}
}

func skipped(repo, reason string) Outcome {
	return Outcome{Repo: repo, State: StateSkipped, Reason: reason}
}

func failed(repo string, err error) Outcome {
	return Outcome{Repo: repo, State: StateFailed, Reason: failureReason(err)}
}

// failureReason folds an error into a short stable reason string. Known
// git failure kinds keep their kebab names; anything else surfaces the
// first line of the message.
func failureReason(err error) string {
	if kind := git.KindOf(err); kind != git.KindOther {
		return kind.String()
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i != -1 {
		msg = msg[:i]
	}
	return msg
}

// AnyFailed reports whether any outcome failed.
func AnyFailed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.State == StateFailed {
			return true
		}
	}
	return false
}

// forEachRepo runs fn once per repository with bounded parallelism.
// Results are stored by index so the report order is the input order
// regardless of completion order. A plain errgroup is used on purpose:
// one repository's failure must not cancel its siblings. fn is
// responsible for reacting to ctx cancellation.
func forEachRepo[T any](ctx context.Context, limit int, repos []RepoEntry, fn func(context.Context, RepoEntry) T) []T {
	if len(repos) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(repos) {
		limit = len(repos)
	}

	results := make([]T, len(repos))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, repo := range repos {
		g.Go(func() error {
			results[i] = fn(ctx, repo)
			return nil
		})
	}

	_ = g.Wait()

	return results
}
