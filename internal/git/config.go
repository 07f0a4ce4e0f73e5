package git

import (
	"context"
	"fmt"
	"strings"
)

// Configuration scope is modeled as a capability with exactly two access
// modes: repository-local read/write and global read-only. Writes take no
// scope parameter at all and always pass --local, so a global write cannot
// be expressed by any call site.

// ConfigScope selects where a config read applies.
type ConfigScope int

const (
	// ScopeLocal reads from the repository-local configuration.
	ScopeLocal ConfigScope = iota
	// ScopeGlobalReadOnly reads from the user-wide configuration. There is
	// no corresponding write mode.
	ScopeGlobalReadOnly
)

// ConfigGet reads a single config value from the given scope. A missing
// key returns an empty string and no error.
func ConfigGet(ctx context.Context, repoPath string, scope ConfigScope, key string) (string, error) {
	args := []string{"config"}
	switch scope {
	case ScopeLocal:
		args = append(args, "--local")
	case ScopeGlobalReadOnly:
		args = append(args, "--global")
	}
	args = append(args, "--get", key)

	out, err := outputGit(ctx, repoPath, args...)
	if err != nil {
		// Exit code 1 with empty stderr means the key is unset.
		if ge, ok := err.(*Error); ok && ge.Kind == KindOther && isUnsetKey(ge.Msg) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ConfigSetLocal writes a config value to the repository-local scope.
// This is the only config write the package exposes.
func ConfigSetLocal(ctx context.Context, repoPath, key, value string) error {
	if err := runGit(ctx, repoPath, "config", "--local", key, value); err != nil {
		return fmt.Errorf("failed to set local config %s: %w", key, err)
	}
	return nil
}

// isUnsetKey recognizes the failure mode of `git config --get` on a
// missing key: exit status 1 with nothing on stderr.
func isUnsetKey(msg string) bool {
	return strings.HasPrefix(msg, "exit status 1") ||
		strings.Contains(msg, "key does not exist") ||
		strings.Contains(msg, "No such file or directory")
}
