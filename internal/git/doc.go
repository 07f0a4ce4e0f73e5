// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather
// than using Go git libraries. This approach is simpler, more reliable, and
// ensures compatibility with user configurations (SSH keys, credential
// helpers, aliases).
//
// Every invocation passes an explicit working directory via `git -C`; no
// function depends on the process working directory. The executor performs
// no retries: transient network failures are classified and surfaced so
// the caller can decide whether to skip or abort.
//
// # Failure Classification
//
// Failed invocations return [*Error] with a [Kind] derived from well-known
// git stderr messages ([KindNotARepository], [KindRemoteUnreachable],
// [KindAuthenticationFailed], [KindMergeConflict], [KindNothingToCommit]).
// Use [KindOf] to branch on the classification.
//
// # Configuration Scope
//
// Git configuration access is deliberately asymmetric: [ConfigGet] accepts
// [ScopeLocal] or [ScopeGlobalReadOnly], while the only write operation is
// [ConfigSetLocal]. A global config write cannot be expressed through this
// package.
package git
