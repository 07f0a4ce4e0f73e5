// Package viewset loads viewset definitions: named collections of
// repositories a view is materialized from.
//
// Definitions live in ~/.config/viewyard/viewsets.yaml and are read-only
// per invocation. A minimal file looks like:
//
//	viewsets:
//	  work:
//	    repos:
//	      - name: api
//	        url: git@github.com:acme/api.git
//	      - name: frontend
//	        url: git@github-oss:acme/frontend.git
//	        directory_name: acme-frontend
//	        account: oss
package viewset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dheater/viewyard/internal/config"
)

// Repository describes one repository of a viewset.
type Repository struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	DirName string `yaml:"directory_name,omitempty"` // local directory, defaults to Name
	Account string `yaml:"account,omitempty"`        // identity hint, overrides URL matching
}

// Directory returns the local directory name for the repository.
func (r Repository) Directory() string {
	if r.DirName != "" {
		return r.DirName
	}
	return r.Name
}

// Viewset is a named set of repositories.
type Viewset struct {
	Repos []Repository `yaml:"repos"`
}

// File is the parsed viewsets.yaml.
type File struct {
	Viewsets map[string]Viewset `yaml:"viewsets"`
}

// ErrNotFound indicates viewsets.yaml does not exist yet.
var ErrNotFound = errors.New("viewsets configuration not found")

// Path returns the path to viewsets.yaml.
func Path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "viewsets.yaml"), nil
}

// Load reads and validates viewsets.yaml.
func Load() (*File, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read viewsets file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates viewsets.yaml content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse viewsets file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks structural requirements: at least one viewset, every
// repository named with a URL, names and directories unique per viewset.
func (f *File) Validate() error {
	if len(f.Viewsets) == 0 {
		return errors.New("no viewsets defined")
	}
	for vsName, vs := range f.Viewsets {
		if len(vs.Repos) == 0 {
			return fmt.Errorf("viewset %q has no repositories", vsName)
		}
		names := make(map[string]bool, len(vs.Repos))
		dirs := make(map[string]bool, len(vs.Repos))
		for i, repo := range vs.Repos {
			if repo.Name == "" {
				return fmt.Errorf("viewset %q: repository %d has no name", vsName, i+1)
			}
			if repo.URL == "" {
				return fmt.Errorf("viewset %q: repository %q has no url", vsName, repo.Name)
			}
			if names[repo.Name] {
				return fmt.Errorf("viewset %q: duplicate repository name %q", vsName, repo.Name)
			}
			names[repo.Name] = true
			if dirs[repo.Directory()] {
				return fmt.Errorf("viewset %q: duplicate directory %q", vsName, repo.Directory())
			}
			dirs[repo.Directory()] = true
		}
	}
	return nil
}

// Names returns the viewset names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Viewsets))
	for name := range f.Viewsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named viewset.
func (f *File) Get(name string) (Viewset, error) {
	vs, ok := f.Viewsets[name]
	if !ok {
		return Viewset{}, fmt.Errorf("unknown viewset %q (available: %v)", name, f.Names())
	}
	return vs, nil
}

// Select filters a viewset down to the named repositories, preserving the
// viewset's repository order. An empty filter selects everything.
func (vs Viewset) Select(names []string) ([]Repository, error) {
	if len(names) == 0 {
		return vs.Repos, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var selected []Repository
	for _, repo := range vs.Repos {
		if wanted[repo.Name] {
			selected = append(selected, repo)
			delete(wanted, repo.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("repositories not in viewset: %v", unknown)
	}
	return selected, nil
}
