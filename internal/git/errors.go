package git

import (
	"context"
	"errors"
	"strings"
)

// Kind classifies a failed git invocation so callers can decide whether to
// skip, abort, or surface the failure. The executor itself never retries.
type Kind int

const (
	// KindOther is any failure not matched by a more specific class.
	KindOther Kind = iota
	// KindNotARepository means the target directory is not a git repository.
	KindNotARepository
	// KindRemoteUnreachable means the remote could not be contacted.
	KindRemoteUnreachable
	// KindAuthenticationFailed means the remote rejected our credentials.
	KindAuthenticationFailed
	// KindMergeConflict means a merge or rebase stopped on conflicts.
	KindMergeConflict
	// KindNothingToCommit means a commit was requested with a clean index.
	KindNothingToCommit
	// KindCancelled means the invocation was cancelled via context.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNotARepository:
		return "not-a-repository"
	case KindRemoteUnreachable:
		return "remote-unreachable"
	case KindAuthenticationFailed:
		return "authentication-failed"
	case KindMergeConflict:
		return "conflict"
	case KindNothingToCommit:
		return "nothing-to-commit"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Error is a classified git failure. Msg carries the raw stderr text.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// KindOf returns the classification of err, or KindOther for errors that
// did not originate from a git invocation.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindOther
}

// classify wraps a raw execution error in an *Error with a Kind derived
// from well-known git stderr messages. Matching is ordered: authentication
// failures often mention the remote, so they are checked before the
// generic unreachable patterns.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Msg: err.Error()}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	kind := KindOther
	switch {
	case strings.Contains(lower, "not a git repository"):
		kind = KindNotARepository
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "permission denied (publickey"),
		strings.Contains(lower, "invalid username or password"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "support for password authentication was removed"):
		kind = KindAuthenticationFailed
	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "unable to access"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "could not read from remote repository"):
		kind = KindRemoteUnreachable
	case strings.Contains(lower, "conflict"),
		strings.Contains(lower, "could not apply"),
		strings.Contains(lower, "needs merge"):
		kind = KindMergeConflict
	case strings.Contains(lower, "nothing to commit"),
		strings.Contains(lower, "nothing added to commit"),
		strings.Contains(lower, "no changes added to commit"):
		kind = KindNothingToCommit
	}

	return &Error{Kind: kind, Msg: msg}
}
