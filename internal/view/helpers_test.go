package view

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dheater/viewyard/internal/git"
	"github.com/dheater/viewyard/internal/viewset"
)

// setHome points HOME at a temp dir with a git identity so commits made
// by the code under test have an author without touching the real
// global config.
func setHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	gitconfig := "[user]\n\tname = Test User\n\temail = test@test.com\n[commit]\n\tgpgsign = false\n[init]\n\tdefaultBranch = main\n"
	if err := os.WriteFile(filepath.Join(home, ".gitconfig"), []byte(gitconfig), 0644); err != nil {
		t.Fatal(err)
	}
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := git.Run(context.Background(), dir, args...); err != nil {
		t.Fatalf("git %v in %s: %v", args, dir, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// resolvedTempDir avoids symlinked temp paths confusing path comparisons.
func resolvedTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// seedOrigin creates a bare repository seeded with one commit on main.
// Its path doubles as the clone URL.
func seedOrigin(t *testing.T) string {
	t.Helper()
	tmp := resolvedTempDir(t)
	origin := filepath.Join(tmp, "origin.git")
	seed := filepath.Join(tmp, "seed")

	gitRun(t, "", "init", "--bare", "-b", "main", origin)
	gitRun(t, "", "clone", origin, seed)
	writeFile(t, filepath.Join(seed, "README.md"), "# seed\n")
	gitRun(t, seed, "add", "README.md")
	gitRun(t, seed, "commit", "-m", "Initial commit")
	gitRun(t, seed, "push", "origin", "main")

	return origin
}

// createTestView materializes a view from the given origins. Repo names
// are repo1, repo2, ... in order.
func createTestView(t *testing.T, name string, origins ...string) (string, *Manifest) {
	t.Helper()

	root := resolvedTempDir(t)
	repos := make([]viewset.Repository, len(origins))
	for i, origin := range origins {
		repos[i] = viewset.Repository{
			Name: testRepoName(i),
			URL:  origin,
		}
	}

	m, outcomes, err := Create(context.Background(), CreateOptions{
		Name:        name,
		Viewset:     "test",
		Repos:       repos,
		Root:        root,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("Create() = %v, want nil", err)
	}
	for _, o := range outcomes {
		if o.State == StateFailed {
			t.Fatalf("Create outcome for %s failed: %s", o.Repo, o.Reason)
		}
	}

	return filepath.Join(root, name), m
}

func testRepoName(i int) string {
	return "repo" + string(rune('1'+i))
}
