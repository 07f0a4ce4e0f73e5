// Package identity maps a repository's remote URL to a local git identity.
//
// Resolution is an ordered match against fixed remote-URL shapes. The
// resulting identity is only ever written to the repository-local config
// scope; global git configuration is read for the signing key and never
// modified.
package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dheater/viewyard/internal/git"
)

// Identity is a git identity applied to a single repository.
type Identity struct {
	UserName   string
	UserEmail  string
	SigningKey string // optional, copied from global config when set
}

// ErrUnmapped indicates no URL shape matched the remote. Callers treat
// this as a warning, not a failure: the repository keeps whatever
// identity git would otherwise use.
var ErrUnmapped = errors.New("remote URL matches no identity rule")

// rule extracts (host, account) from one remote-URL shape.
type rule struct {
	name string
	re   *regexp.Regexp
	// host and account are the capture group indices
	host, account int
}

// Shapes are matched in order. The SSH alias form must come before the
// canonical SSH form: "git@github-oss:acme/x.git" would otherwise match
// the canonical shape with the alias as its host.
var rules = []rule{
	{
		// SSH host alias carrying the account: git@github-oss:owner/repo.git
		name:    "ssh-alias",
		re:      regexp.MustCompile(`^git@([a-z0-9]+(?:\.[a-z0-9.]+)?)-([A-Za-z0-9_-]+):[^/]+/.+$`),
		host:    1,
		account: 2,
	},
	{
		// Canonical SSH: git@github.com:owner/repo.git
		name:    "ssh",
		re:      regexp.MustCompile(`^git@([a-z0-9.-]+\.[a-z]+):([^/]+)/.+$`),
		host:    1,
		account: 2,
	},
	{
		// HTTPS: https://github.com/owner/repo
		name:    "https",
		re:      regexp.MustCompile(`^https?://([a-z0-9.-]+\.[a-z]+)/([^/]+)/.+$`),
		host:    1,
		account: 2,
	},
}

// match returns (host, account) for the first rule matching remoteURL.
func match(remoteURL string) (host, account string, ok bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(remoteURL)
		if m == nil {
			continue
		}
		host, account = m[r.host], m[r.account]
		if r.name == "ssh-alias" && !strings.Contains(host, ".") {
			// Alias stems like "github" name the forge, not a resolvable
			// host; email domains need the real one.
			host += ".com"
		}
		account = strings.TrimSuffix(account, ".git")
		return host, account, true
	}
	return "", "", false
}

// Resolve derives the identity for a remote URL. accountHint, when
// non-empty, overrides the account extracted from the URL but the host
// still comes from the URL. The signing key is copied from the global git
// config if one is set there.
func Resolve(ctx context.Context, remoteURL, accountHint string) (Identity, error) {
	host, account, ok := match(remoteURL)
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnmapped, remoteURL)
	}
	if accountHint != "" {
		account = accountHint
	}

	id := Identity{
		UserName:  account,
		UserEmail: fmt.Sprintf("%s@users.noreply.%s", account, host),
	}

	key, err := git.ConfigGet(ctx, "", git.ScopeGlobalReadOnly, "user.signingkey")
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read global signing key: %w", err)
	}
	id.SigningKey = key

	return id, nil
}

// Apply writes the identity to the repository's local config. Only the
// local scope is touched.
func Apply(ctx context.Context, repoPath string, id Identity) error {
	if err := git.ConfigSetLocal(ctx, repoPath, "user.name", id.UserName); err != nil {
		return err
	}
	if err := git.ConfigSetLocal(ctx, repoPath, "user.email", id.UserEmail); err != nil {
		return err
	}
	if id.SigningKey != "" {
		if err := git.ConfigSetLocal(ctx, repoPath, "user.signingkey", id.SigningKey); err != nil {
			return err
		}
	}
	return nil
}
