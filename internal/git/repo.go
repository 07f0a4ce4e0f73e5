package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsRepo returns true if path contains a .git directory.
func IsRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// Clone clones url into targetDir. With shallow, only the latest commit of
// each branch is fetched.
func Clone(ctx context.Context, url, targetDir string, shallow bool) error {
	args := []string{"clone"}
	if shallow {
		args = append(args, "--depth", "1")
	}
	args = append(args, url, targetDir)
	return runGit(ctx, "", args...)
}

// CurrentBranch returns the current branch name.
// Returns "(detached)" for detached HEAD state.
func CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get branch: %w", err)
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return "(detached)", nil
	}
	return branch, nil
}

// LocalBranchExists checks if a local branch exists in the repo at path.
func LocalBranchExists(ctx context.Context, path, branch string) bool {
	return runGit(ctx, path, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch) == nil
}

// CheckoutBranch checks out an existing local branch.
func CheckoutBranch(ctx context.Context, path, branch string) error {
	return runGit(ctx, path, "checkout", branch)
}

// CreateBranch creates and checks out a new branch.
func CreateBranch(ctx context.Context, path, branch string) error {
	return runGit(ctx, path, "checkout", "-b", branch)
}

// CheckoutOrCreateBranch checks out branch, creating it first if it does
// not exist locally.
func CheckoutOrCreateBranch(ctx context.Context, path, branch string) error {
	if LocalBranchExists(ctx, path, branch) {
		return CheckoutBranch(ctx, path, branch)
	}
	return CreateBranch(ctx, path, branch)
}

// IsDirty reports whether the working tree has uncommitted changes,
// including untracked files.
func IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// HasUpstream reports whether branch has a configured upstream.
func HasUpstream(ctx context.Context, path, branch string) bool {
	out, err := outputGit(ctx, path, "config", "--local", fmt.Sprintf("branch.%s.merge", branch))
	return err == nil && strings.TrimSpace(string(out)) != ""
}

// HasRemote reports whether the repo has an origin remote configured.
func HasRemote(ctx context.Context, path string) bool {
	_, err := OriginURL(ctx, path)
	return err == nil
}

// OriginURL gets the origin URL for a repository.
func OriginURL(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// AheadBehind returns how many commits HEAD is ahead of and behind its
// configured upstream. The caller must ensure an upstream exists.
func AheadBehind(ctx context.Context, path string) (ahead, behind int, err error) {
	out, err := outputGit(ctx, path, "rev-list", "--left-right", "--count", "@{upstream}...HEAD")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compare with upstream: %w", err)
	}
	// Output is "<behind>\t<ahead>": left side counts commits only on the
	// upstream, right side commits only on HEAD.
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%d %d", &behind, &ahead); err != nil {
		return 0, 0, fmt.Errorf("failed to parse rev-list output %q: %w", out, err)
	}
	return ahead, behind, nil
}

// CountCommits returns the number of commits in the given revision range.
func CountCommits(ctx context.Context, path, revRange string) (int, error) {
	out, err := outputGit(ctx, path, "rev-list", "--count", revRange)
	if err != nil {
		return 0, err
	}
	var count int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%d", &count); err != nil {
		return 0, fmt.Errorf("failed to parse commit count %q: %w", out, err)
	}
	return count, nil
}

// HeadCommit returns the full commit hash of HEAD.
func HeadCommit(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ErrNoDefaultBranch indicates the remote default branch could not be
// resolved, neither via the remote HEAD symbolic ref nor the fallback
// candidates.
var ErrNoDefaultBranch = fmt.Errorf("no-default-branch")

// DefaultRemoteBranch returns the default branch name of the origin remote
// (e.g. "main" or "master"). It resolves the remote HEAD symbolic ref
// first and falls back to probing origin/main then origin/master. An
// unresolved default branch is an error, not a guess.
func DefaultRemoteBranch(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(out))
		if idx := strings.LastIndex(ref, "/"); idx != -1 && idx+1 < len(ref) {
			return ref[idx+1:], nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if runGit(ctx, path, "rev-parse", "--verify", "--quiet", "origin/"+candidate) == nil {
			return candidate, nil
		}
	}

	return "", ErrNoDefaultBranch
}

// Fetch fetches a specific branch from origin.
func Fetch(ctx context.Context, path, branch string) error {
	if err := runGit(ctx, path, "fetch", "origin", branch, "--quiet"); err != nil {
		return fmt.Errorf("failed to fetch origin/%s: %w", branch, err)
	}
	return nil
}

// Rebase rebases the current branch onto the given ref. On conflict the
// repository is left in its rebase-in-progress state for manual
// resolution; no abort is attempted.
func Rebase(ctx context.Context, path, onto string) error {
	return runGit(ctx, path, "rebase", onto)
}

// StageTracked stages modifications and deletions of tracked files only.
func StageTracked(ctx context.Context, path string) error {
	return runGit(ctx, path, "add", "-u")
}

// StageAll stages all changes including untracked files.
func StageAll(ctx context.Context, path string) error {
	return runGit(ctx, path, "add", "-A")
}

// HasStagedChanges reports whether the index differs from HEAD.
func HasStagedChanges(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// Commit commits staged changes with the given message.
func Commit(ctx context.Context, path, message string) error {
	return runGit(ctx, path, "commit", "-m", message)
}

// Push pushes the current branch to its configured upstream.
func Push(ctx context.Context, path string) error {
	return runGit(ctx, path, "push")
}

// PushSetUpstream pushes branch to origin and sets it as upstream,
// creating the remote branch on first push.
func PushSetUpstream(ctx context.Context, path, branch string) error {
	return runGit(ctx, path, "push", "-u", "origin", branch)
}
