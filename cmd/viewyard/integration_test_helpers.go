//go:build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/config"
	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/output"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// runGitCommand runs a git command and returns output
func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to run %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// setupOrigin creates a bare repo seeded with one commit on main and
// returns its path, which doubles as the clone URL.
func setupOrigin(t *testing.T, name string) string {
	t.Helper()

	dir := resolvePath(t, t.TempDir())
	barePath := filepath.Join(dir, name+".git")
	seedPath := filepath.Join(dir, "seed")

	runGitCommand(t, dir, "git", "init", "--bare", "-b", "main", barePath)
	runGitCommand(t, dir, "git", "clone", barePath, seedPath)
	if err := os.WriteFile(filepath.Join(seedPath, "README.md"), []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runGitCommand(t, seedPath, "git", "add", "README.md")
	runGitCommand(t, seedPath, "git", "commit", "-m", "Initial commit")
	runGitCommand(t, seedPath, "git", "push", "origin", "main")

	return barePath
}

// setupEnv points HOME at a temp dir with a git identity and a
// viewsets.yaml naming the given origins, and wires the package globals
// the commands read. Returns the views root.
func setupEnv(t *testing.T, origins map[string]string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	gitconfig := "[user]\n\tname = Test User\n\temail = test@test.com\n[commit]\n\tgpgsign = false\n"
	if err := os.WriteFile(filepath.Join(home, ".gitconfig"), []byte(gitconfig), 0644); err != nil {
		t.Fatal(err)
	}

	var yaml bytes.Buffer
	yaml.WriteString("viewsets:\n  work:\n    repos:\n")
	for name, url := range origins {
		fmt.Fprintf(&yaml, "      - name: %s\n        url: %s\n", name, url)
	}
	confDir := filepath.Join(home, ".config", "viewyard")
	if err := os.MkdirAll(confDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "viewsets.yaml"), yaml.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	root := resolvePath(t, t.TempDir())
	cfg = &config.Config{ViewsRoot: root, Concurrency: 2}
	workDir = root
	return root
}

// testContext builds a command context with a quiet logger and a
// printer capturing primary output.
func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	ctx := log.WithLogger(context.Background(), log.New(io.Discard, false, true))
	ctx = output.WithPrinter(ctx, buf)
	return ctx, buf
}

// runCommand executes a command constructor with args against ctx.
func runCommand(ctx context.Context, newCmd func() *cobra.Command, args []string) error {
	cmd := newCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// resetRootCmd restores root command state mutated by an Execute call so
// tests can drive the full command tree repeatedly.
func resetRootCmd(t *testing.T) {
	t.Helper()
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs([]string{})
	verbose = false
	quiet = false
	for _, name := range []string{"verbose", "quiet"} {
		f := rootCmd.PersistentFlags().Lookup(name)
		f.Changed = false
		if err := f.Value.Set("false"); err != nil {
			t.Fatal(err)
		}
	}
}
