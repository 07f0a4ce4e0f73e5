package git

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/dheater/viewyard/internal/cmd"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with context support and verbose logging.
// Failures are returned as *Error with a classified Kind.
func runGit(ctx context.Context, dir string, args ...string) error {
	if err := cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...); err != nil {
		return classify(err)
	}
	return nil
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout. Failures are returned as *Error with a classified Kind.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	out, err := cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Run executes a git command in dir. Exported for commands that need raw
// git access (e.g. streaming a diff).
func Run(ctx context.Context, dir string, args ...string) error {
	return runGit(ctx, dir, args...)
}

// Output executes a git command in dir and returns stdout.
func Output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return outputGit(ctx, dir, args...)
}
