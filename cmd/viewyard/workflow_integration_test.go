//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/view"
)

// TestViewCreate_EndToEnd exercises view create through the command.
//
// Scenario: `viewyard view create task1` with a two-repo viewset
// Expected: both repos cloned, on branch task1, manifest written
func TestViewCreate_EndToEnd(t *testing.T) {
	api := setupOrigin(t, "api")
	frontend := setupOrigin(t, "frontend")
	root := setupEnv(t, map[string]string{"api": api, "frontend": frontend})

	ctx, buf := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatalf("view create failed: %v", err)
	}

	viewDir := filepath.Join(root, "task1")
	m, err := view.LoadManifest(viewDir)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if len(m.Repos) != 2 {
		t.Fatalf("manifest repos = %d, want 2", len(m.Repos))
	}
	for _, entry := range m.Repos {
		out := runGitCommand(t, filepath.Join(viewDir, entry.Dir), "git", "branch", "--show-current")
		if strings.TrimSpace(out) != "task1" {
			t.Errorf("%s on branch %q, want task1", entry.Name, strings.TrimSpace(out))
		}
	}
	if !strings.Contains(buf.String(), "ok") {
		t.Errorf("output missing outcomes:\n%s", buf.String())
	}
}

// TestStatus_CleanAndDirty exercises status through the command.
//
// Scenario: one repo dirtied after create, then `viewyard status`
// Expected: table shows clean and dirty rows, no error
func TestStatus_CleanAndDirty(t *testing.T) {
	api := setupOrigin(t, "api")
	frontend := setupOrigin(t, "frontend")
	root := setupEnv(t, map[string]string{"api": api, "frontend": frontend})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatal(err)
	}

	viewDir := filepath.Join(root, "task1")
	m, err := view.LoadManifest(viewDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(viewDir, m.Repos[0].Dir, "wip.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// status is resolved from inside the view
	workDir = viewDir
	ctx, buf := testContext(t)
	if err := runCommand(ctx, newStatusCmd, nil); err != nil {
		t.Fatalf("status failed: %v\n%s", err, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "clean") || !strings.Contains(out, "dirty") {
		t.Errorf("status output missing states:\n%s", out)
	}
}

// TestStatus_JSON verifies machine-readable status output.
func TestStatus_JSON(t *testing.T) {
	api := setupOrigin(t, "api")
	root := setupEnv(t, map[string]string{"api": api})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatal(err)
	}

	workDir = filepath.Join(root, "task1")
	ctx, buf := testContext(t)
	if err := runCommand(ctx, newStatusCmd, []string{"--json"}); err != nil {
		t.Fatalf("status --json failed: %v", err)
	}

	var display []statusDisplay
	if err := json.Unmarshal(buf.Bytes(), &display); err != nil {
		t.Fatalf("status --json output is not JSON: %v\n%s", err, buf.String())
	}
	if len(display) != 1 || display[0].Status != "clean" {
		t.Errorf("status json = %+v, want one clean repo", display)
	}
}

// TestCommitPushWorkflow runs the commit-all then push-all flow.
//
// Scenario: dirty repo, `viewyard commit-all`, then `viewyard push-all`
// Expected: change committed and published with upstream set
func TestCommitPushWorkflow(t *testing.T) {
	api := setupOrigin(t, "api")
	root := setupEnv(t, map[string]string{"api": api})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatal(err)
	}

	viewDir := filepath.Join(root, "task1")
	m, err := view.LoadManifest(viewDir)
	if err != nil {
		t.Fatal(err)
	}
	repoPath := filepath.Join(viewDir, m.Repos[0].Dir)
	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# changed\n"), 0644); err != nil {
		t.Fatal(err)
	}

	workDir = viewDir
	ctx, buf := testContext(t)
	if err := runCommand(ctx, newCommitAllCmd, []string{"Update readme"}); err != nil {
		t.Fatalf("commit-all failed: %v\n%s", err, buf.String())
	}

	ctx, buf = testContext(t)
	if err := runCommand(ctx, newPushAllCmd, nil); err != nil {
		t.Fatalf("push-all failed: %v\n%s", err, buf.String())
	}

	// The branch exists on the origin with the new commit
	out := runGitCommand(t, "", "git", "-C", api, "log", "--oneline", "task1")
	if !strings.Contains(out, "Update readme") {
		t.Errorf("origin task1 missing pushed commit:\n%s", out)
	}
}

// TestViewDelete_DirtyRefusedThenForced checks the delete gate.
func TestViewDelete_DirtyRefusedThenForced(t *testing.T) {
	api := setupOrigin(t, "api")
	root := setupEnv(t, map[string]string{"api": api})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatal(err)
	}

	viewDir := filepath.Join(root, "task1")
	m, err := view.LoadManifest(viewDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(viewDir, m.Repos[0].Dir, "wip.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, _ = testContext(t)
	err = runCommand(ctx, newViewCmd, []string{"delete", "task1"})
	var pe *view.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("delete(dirty) = %v, want *PreconditionError", err)
	}

	ctx, _ = testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"delete", "task1", "--force"}); err != nil {
		t.Fatalf("delete --force failed: %v", err)
	}
	if _, err := os.Stat(viewDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("view directory still exists after forced delete")
	}
}

// TestViewList_And_Validate covers the read-only view commands.
func TestViewList_And_Validate(t *testing.T) {
	api := setupOrigin(t, "api")
	setupEnv(t, map[string]string{"api": api})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1"}); err != nil {
		t.Fatal(err)
	}

	ctx, buf := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"list"}); err != nil {
		t.Fatalf("view list failed: %v", err)
	}
	if !strings.Contains(buf.String(), "task1") {
		t.Errorf("view list missing task1:\n%s", buf.String())
	}

	ctx, buf = testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"validate"}); err != nil {
		t.Fatalf("view validate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "work") {
		t.Errorf("validate output missing viewset:\n%s", buf.String())
	}
}

// TestCreate_RepoSubset checks positional repo filtering.
func TestCreate_RepoSubset(t *testing.T) {
	api := setupOrigin(t, "api")
	frontend := setupOrigin(t, "frontend")
	root := setupEnv(t, map[string]string{"api": api, "frontend": frontend})

	ctx, _ := testContext(t)
	if err := runCommand(ctx, newViewCmd, []string{"create", "task1", "api"}); err != nil {
		t.Fatalf("view create with subset failed: %v", err)
	}

	m, err := view.LoadManifest(filepath.Join(root, "task1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Repos) != 1 || m.Repos[0].Name != "api" {
		t.Errorf("manifest repos = %+v, want just api", m.Repos)
	}
}

// TestVerbose_TracesGitCommands runs the full command tree so the
// verbose flag is parsed before the logger is built.
//
// Scenario: `viewyard --verbose view create task1`
// Expected: stderr carries the `$ git clone ...` invocation traces
func TestVerbose_TracesGitCommands(t *testing.T) {
	api := setupOrigin(t, "api")
	setupEnv(t, map[string]string{"api": api})

	var errBuf bytes.Buffer
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetContext(output.WithPrinter(context.Background(), io.Discard))
	rootCmd.SetArgs([]string{"--verbose", "view", "create", "task1"})
	t.Cleanup(func() { resetRootCmd(t) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("--verbose view create failed: %v\n%s", err, errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "$ git clone") {
		t.Errorf("verbose output missing git traces:\n%s", errBuf.String())
	}
}

// TestQuiet_SuppressesDiagnostics runs the full command tree so the
// quiet flag is parsed before the logger is built.
//
// Scenario: `viewyard --quiet view create task1`
// Expected: nothing on stderr, not even the created-view line
func TestQuiet_SuppressesDiagnostics(t *testing.T) {
	api := setupOrigin(t, "api")
	setupEnv(t, map[string]string{"api": api})

	var errBuf bytes.Buffer
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetContext(output.WithPrinter(context.Background(), io.Discard))
	rootCmd.SetArgs([]string{"--quiet", "view", "create", "task1"})
	t.Cleanup(func() { resetRootCmd(t) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("--quiet view create failed: %v\n%s", err, errBuf.String())
	}
	if errBuf.Len() != 0 {
		t.Errorf("quiet run produced diagnostics:\n%s", errBuf.String())
	}
}

// TestConfigInit creates the default config file.
func TestConfigInit(t *testing.T) {
	api := setupOrigin(t, "api")
	setupEnv(t, map[string]string{"api": api})

	ctx, buf := testContext(t)
	if err := runCommand(ctx, newConfigCmd, []string{"init"}); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(buf.String(), "config.toml") {
		t.Errorf("config init output missing path:\n%s", buf.String())
	}

	// Refuses to overwrite without force
	ctx, _ = testContext(t)
	if err := runCommand(ctx, newConfigCmd, []string{"init"}); err == nil {
		t.Error("second config init succeeded, want error")
	}
}
