package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/dheater/viewyard/internal/config"
	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/ui"
	"github.com/dheater/viewyard/internal/view"
	"github.com/dheater/viewyard/internal/viewset"
)

// viewsRoot is where views are created and listed: the configured root,
// or the current directory when none is set.
func viewsRoot() string {
	if cfg.ViewsRoot != "" {
		return cfg.ViewsRoot
	}
	return workDir
}

// concurrencyLimit returns the configured parallelism bound.
func concurrencyLimit() int {
	if cfg.Concurrency > 0 {
		return cfg.Concurrency
	}
	return config.DefaultConcurrency
}

// currentView locates the view enclosing the working directory.
func currentView() (string, *view.Manifest, error) {
	viewDir, m, err := view.Find(workDir)
	if err != nil {
		return "", nil, view.Preconditionf("%v; run this inside a view directory", err)
	}
	return viewDir, m, nil
}

// resolveViewset picks the viewset to use: the explicit flag, the
// configured default, or the only one defined.
func resolveViewset(f *viewset.File, flagValue string) (string, viewset.Viewset, error) {
	name := flagValue
	if name == "" {
		name = cfg.DefaultViewset
	}
	if name == "" {
		names := f.Names()
		if len(names) == 1 {
			name = names[0]
		} else {
			return "", viewset.Viewset{}, view.Preconditionf(
				"multiple viewsets defined (%v), pick one with --viewset or set default_viewset", names)
		}
	}
	vs, err := f.Get(name)
	if err != nil {
		return "", viewset.Viewset{}, view.Preconditionf("%v", err)
	}
	return name, vs, nil
}

// confirm asks a yes/no question on the terminal. Piped stdin (scripts,
// CI) counts as yes; there the caller's flags alone decide.
func confirm(prompt string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printOutcomes renders per-repository outcomes as a table and returns
// ErrPartialFailure when any repository failed.
func printOutcomes(out *output.Printer, outcomes []view.Outcome) error {
	headers := []string{"REPO", "RESULT", "REASON"}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{o.Repo, o.State.String(), o.Reason})
	}
	out.Print(ui.RenderTable(headers, rows))

	var okCount, skippedCount, failedCount int
	for _, o := range outcomes {
		switch o.State {
		case view.StateOk:
			okCount++
		case view.StateSkipped:
			skippedCount++
		case view.StateFailed:
			failedCount++
		}
	}
	out.Printf("%d ok, %d skipped, %d failed\n", okCount, skippedCount, failedCount)

	if failedCount > 0 {
		return fmt.Errorf("%w (%d of %d)", view.ErrPartialFailure, failedCount, len(outcomes))
	}
	return nil
}
