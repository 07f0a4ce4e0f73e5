package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/ui"
	"github.com/dheater/viewyard/internal/view"
)

// statusDisplay holds one repository's status for display
type statusDisplay struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Status string `json:"status"`
	Ahead  int    `json:"ahead,omitempty"`
	Behind int    `json:"behind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show every repository's status",
		GroupID: GroupRepo,
		Args:    cobra.NoArgs,
		Long: `Show the status of every repository in the enclosing view: working
tree cleanliness, commits ahead of or behind the upstream, and error
states like a drifted branch.

Exits 1 when any repository reports an error. Dirty, ahead, behind, and
diverged are ordinary working states and exit 0.`,
		Example: `  viewyard status
  viewyard status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			viewDir, m, err := currentView()
			if err != nil {
				return err
			}
			l.Debug("computing status", "view", m.ViewName, "repos", len(m.Repos))

			entries := view.StatusAll(ctx, viewDir, m, concurrencyLimit())

			if jsonOutput {
				display := make([]statusDisplay, 0, len(entries))
				for _, e := range entries {
					display = append(display, statusDisplay{
						Repo:   e.Name,
						Branch: e.Branch,
						Status: e.Status.String(),
						Ahead:  e.Status.Ahead,
						Behind: e.Status.Behind,
						Reason: e.Status.Reason,
					})
				}
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				if err := enc.Encode(display); err != nil {
					return err
				}
			} else {
				headers := []string{"REPO", "BRANCH", "STATUS"}
				var rows [][]string
				for _, e := range entries {
					rows = append(rows, []string{e.Name, e.Branch, e.Status.String()})
				}
				out.Print(ui.RenderTable(headers, rows))

				c := view.Count(entries)
				out.Printf("%d clean", c.Clean)
				for _, part := range []struct {
					n     int
					label string
				}{
					{c.Dirty, "dirty"},
					{c.Ahead, "ahead"},
					{c.Behind, "behind"},
					{c.DirtyAndAhead, "dirty+ahead"},
					{c.Diverged, "diverged"},
					{c.Errors, "error"},
				} {
					if part.n > 0 {
						out.Printf(", %d %s", part.n, part.label)
					}
				}
				out.Println()
			}

			if view.HasErrors(entries) {
				return fmt.Errorf("%w: repository errors reported", view.ErrPartialFailure)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
