package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dheater/viewyard/internal/git"
	"github.com/dheater/viewyard/internal/identity"
	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/viewset"
)

// MaxViewNameLength bounds view names; they double as branch names and
// directory names.
const MaxViewNameLength = 100

// ValidateViewName rejects names that cannot serve as both a directory
// and a git branch.
func ValidateViewName(name string) error {
	if name == "" {
		return Preconditionf("view name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return Preconditionf("view name cannot contain slashes: %q", name)
	}
	if strings.HasPrefix(name, ".") {
		return Preconditionf("view name cannot start with a dot: %q", name)
	}
	if len(name) > MaxViewNameLength {
		return Preconditionf("view name too long (%d chars, max %d)", len(name), MaxViewNameLength)
	}
	return nil
}

// CreateOptions parameterizes view creation.
type CreateOptions struct {
	Name        string
	Viewset     string // viewset name, recorded in the manifest
	Repos       []viewset.Repository
	Root        string // views root directory
	Shallow     bool
	Concurrency int
}

// Create materializes a view: for every repository, clone-or-reuse the
// local checkout, check out (or create) the branch named after the view,
// and apply the resolved identity to the repository-local config.
//
// A repository failure never aborts the others. The manifest records
// only repositories whose clone and checkout succeeded; the returned
// outcomes list every attempted repository in input order.
func Create(ctx context.Context, opts CreateOptions) (*Manifest, []Outcome, error) {
	if err := ValidateViewName(opts.Name); err != nil {
		return nil, nil, err
	}
	if len(opts.Repos) == 0 {
		return nil, nil, Preconditionf("no repositories selected")
	}

	viewDir := filepath.Join(opts.Root, opts.Name)
	if _, err := LoadManifest(viewDir); err == nil {
		return nil, nil, Preconditionf("view %q already exists at %s", opts.Name, viewDir)
	}
	if err := os.MkdirAll(viewDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create view directory: %w", err)
	}

	entries := make([]RepoEntry, len(opts.Repos))
	for i, repo := range opts.Repos {
		entries[i] = RepoEntry{
			Name:    repo.Name,
			URL:     repo.URL,
			Dir:     repo.Directory(),
			Branch:  opts.Name,
			Account: repo.Account,
		}
	}

	outcomes := forEachRepo(ctx, opts.Concurrency, entries, func(ctx context.Context, entry RepoEntry) Outcome {
		return setupRepo(ctx, viewDir, entry, opts.Shallow)
	})

	m := &Manifest{
		ViewName:  opts.Name,
		Viewset:   opts.Viewset,
		CreatedAt: time.Now().UTC(),
	}
	for i, o := range outcomes {
		if o.State == StateOk {
			m.Repos = append(m.Repos, entries[i])
		}
	}

	if err := m.Save(viewDir); err != nil {
		return nil, outcomes, err
	}
	return m, outcomes, nil
}

// setupRepo performs the per-repository creation steps. Identity
// resolution failing to match is a warning, not a failure: the
// repository keeps git's ambient identity.
func setupRepo(ctx context.Context, viewDir string, entry RepoEntry, shallow bool) Outcome {
	if ctx.Err() != nil {
		return Outcome{Repo: entry.Name, State: StateFailed, Reason: "cancelled"}
	}

	path := filepath.Join(viewDir, entry.Dir)

	if !git.IsRepo(path) {
		if err := git.Clone(ctx, entry.URL, path, shallow); err != nil {
			return failed(entry.Name, err)
		}
	}

	if err := git.CheckoutOrCreateBranch(ctx, path, entry.Branch); err != nil {
		return failed(entry.Name, err)
	}

	id, err := identity.Resolve(ctx, entry.URL, entry.Account)
	if err != nil {
		if errors.Is(err, identity.ErrUnmapped) {
			log.FromContext(ctx).Printf("warning: %s: no identity rule matches %s, keeping ambient git identity\n", entry.Name, entry.URL)
			return okReason(entry.Name, "identity-unmapped")
		}
		return failed(entry.Name, err)
	}
	if err := identity.Apply(ctx, path, id); err != nil {
		return failed(entry.Name, err)
	}

	return ok(entry.Name)
}

// Summary describes one view for listing.
type Summary struct {
	Name      string
	Viewset   string
	RepoCount int
	ModTime   time.Time
	Path      string
}

// List scans the views root for directories carrying a manifest. No git
// is invoked. A missing root yields an empty list.
func List(root string) ([]Summary, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read views root: %w", err)
	}

	var summaries []Summary
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		viewDir := filepath.Join(root, de.Name())
		m, err := LoadManifest(viewDir)
		if err != nil {
			continue // not a view, or unreadable manifest
		}

		modTime := m.CreatedAt
		if info, err := os.Stat(filepath.Join(viewDir, ManifestName)); err == nil {
			modTime = info.ModTime()
		}

		summaries = append(summaries, Summary{
			Name:      m.ViewName,
			Viewset:   m.Viewset,
			RepoCount: len(m.Repos),
			ModTime:   modTime,
			Path:      viewDir,
		})
	}
	return summaries, nil
}

// Delete removes a view directory. Without force it first computes every
// repository's status and refuses if any would lose local work, naming
// the repositories. Deletion never touches upstream remotes.
func Delete(ctx context.Context, root, name string, force bool, concurrency int) error {
	viewDir := filepath.Join(root, name)
	m, err := LoadManifest(viewDir)
	if err != nil {
		if errors.Is(err, ErrNoView) {
			return Preconditionf("no view named %q under %s", name, root)
		}
		return err
	}

	if !force {
		entries := StatusAll(ctx, viewDir, m, concurrency)
		var blocking []string
		for _, e := range entries {
			// Error states block too: cleanliness cannot be proven.
			if e.Status.IsUnclean() || e.Status.Code == StatusError {
				blocking = append(blocking, fmt.Sprintf("%s (%s)", e.Name, e.Status))
			}
		}
		if len(blocking) > 0 {
			return Preconditionf("view %q has unclean repositories, use --force to delete anyway:\n  %s",
				name, strings.Join(blocking, "\n  "))
		}
	}

	if err := os.RemoveAll(viewDir); err != nil {
		return fmt.Errorf("delete view directory: %w", err)
	}
	return nil
}
