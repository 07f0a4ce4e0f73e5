package main

import (
	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/view"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "diff",
		Short:   "Show uncommitted changes across the view",
		GroupID: GroupRepo,
		Args:    cobra.NoArgs,
		Long: `Show the working tree diff of every dirty repository in the enclosing
view, one after another. Untracked files are not diffed; status lists
them as dirty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			viewDir, m, err := currentView()
			if err != nil {
				return err
			}

			c := view.NewCoordinator(viewDir, m, concurrencyLimit())
			diffs := c.Diffs(ctx)

			if len(diffs) == 0 {
				out.Println("No uncommitted changes")
				return nil
			}

			failed := false
			for _, d := range diffs {
				if d.Err != nil {
					l.Printf("warning: %s: %v\n", d.Name, d.Err)
					failed = true
					continue
				}
				out.Printf("=== %s ===\n", d.Name)
				out.Print(d.Diff)
			}
			if failed {
				return view.ErrPartialFailure
			}
			return nil
		},
	}
}
