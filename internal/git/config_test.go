package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSetLocal_RoundTrip(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := ConfigSetLocal(ctx, repoPath, "user.name", "View User"); err != nil {
		t.Fatalf("ConfigSetLocal() = %v, want nil", err)
	}

	got, err := ConfigGet(ctx, repoPath, ScopeLocal, "user.name")
	if err != nil {
		t.Fatalf("ConfigGet() = %v, want nil", err)
	}
	if got != "View User" {
		t.Errorf("ConfigGet(user.name) = %q, want %q", got, "View User")
	}
}

func TestConfigGet_UnsetKey(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	got, err := ConfigGet(ctx, repoPath, ScopeLocal, "viewyard.nosuchkey")
	if err != nil {
		t.Fatalf("ConfigGet(unset key) = %v, want nil", err)
	}
	if got != "" {
		t.Errorf("ConfigGet(unset key) = %q, want empty", got)
	}
}

func TestConfigGet_GlobalReadOnly(t *testing.T) {
	// Not parallel: overrides HOME for the git subprocess.
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	gitconfig := "[user]\n\tsigningkey = ~/.ssh/id_test.pub\n"
	if err := os.WriteFile(filepath.Join(home, ".gitconfig"), []byte(gitconfig), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	got, err := ConfigGet(ctx, "", ScopeGlobalReadOnly, "user.signingkey")
	if err != nil {
		t.Fatalf("ConfigGet(global signingkey) = %v, want nil", err)
	}
	if got != "~/.ssh/id_test.pub" {
		t.Errorf("ConfigGet(global signingkey) = %q, want %q", got, "~/.ssh/id_test.pub")
	}
}

func TestConfigGet_GlobalMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	ctx := context.Background()
	got, err := ConfigGet(ctx, "", ScopeGlobalReadOnly, "user.signingkey")
	if err != nil {
		t.Fatalf("ConfigGet(missing global) = %v, want nil", err)
	}
	if got != "" {
		t.Errorf("ConfigGet(missing global) = %q, want empty", got)
	}
}
