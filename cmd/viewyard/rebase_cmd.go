package main

import (
	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/view"
)

func newRebaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rebase",
		Short:   "Rebase every repository onto its remote default branch",
		GroupID: GroupRepo,
		Args:    cobra.NoArgs,
		Long: `Fetch each repository's remote default branch and rebase the view
branch onto it.

Dirty repositories are skipped: commit or stash first. A conflict fails
that repository and leaves it mid-rebase for manual resolution; no
automatic abort is attempted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			viewDir, m, err := currentView()
			if err != nil {
				return err
			}

			c := view.NewCoordinator(viewDir, m, concurrencyLimit())
			return printOutcomes(out, c.Rebase(ctx))
		},
	}
}
