package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the marker file that makes a directory a view.
const ManifestName = ".viewyard.json"

// RepoEntry records one materialized repository of a view.
type RepoEntry struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Dir     string `json:"dir"`    // directory relative to the view root
	Branch  string `json:"branch"` // always the view name
	Account string `json:"account,omitempty"`
}

// Manifest is the on-disk record of a view. Its existence defines the
// view; it lists only repositories that were fully set up.
type Manifest struct {
	ViewName  string      `json:"view_name"`
	Viewset   string      `json:"viewset"`
	CreatedAt time.Time   `json:"created_at"`
	Repos     []RepoEntry `json:"repos"`
}

// ErrNoView indicates the current directory is not inside a view.
var ErrNoView = errors.New("not inside a view (no " + ManifestName + " found)")

// Save writes the manifest into viewDir atomically.
func (m *Manifest) Save(viewDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(viewDir, ManifestName)

	// Write to temp file first for atomic operation
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // Clean up temp file on failure
		return fmt.Errorf("save manifest: %w", err)
	}

	return nil
}

// LoadManifest reads the manifest from viewDir.
func LoadManifest(viewDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(viewDir, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoView
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &m, nil
}

// Find walks up from startDir looking for a manifest. Returns the view
// directory and its manifest, or ErrNoView.
func Find(startDir string) (string, *Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", nil, err
	}

	for {
		m, err := LoadManifest(dir)
		if err == nil {
			return dir, m, nil
		}
		if !errors.Is(err, ErrNoView) {
			return "", nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, ErrNoView
		}
		dir = parent
	}
}
