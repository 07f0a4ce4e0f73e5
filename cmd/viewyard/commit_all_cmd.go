package main

import (
	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/view"
)

func newCommitAllCmd() *cobra.Command {
	var includeUntracked bool

	cmd := &cobra.Command{
		Use:     "commit-all <message>",
		Short:   "Commit every dirty repository with one message",
		GroupID: GroupRepo,
		Args:    cobra.ExactArgs(1),
		Long: `Commit every dirty repository of the enclosing view with the same
message. Clean repositories are skipped.

Only tracked changes are staged by default; pass --include-untracked or
set stage_untracked in the config to include new files.`,
		Example: `  viewyard commit-all "Rename login endpoint"
  viewyard commit-all "Add fixtures" --include-untracked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			viewDir, m, err := currentView()
			if err != nil {
				return err
			}

			c := view.NewCoordinator(viewDir, m, concurrencyLimit())
			outcomes := c.CommitAll(ctx, args[0], includeUntracked || cfg.StageUntracked)
			return printOutcomes(out, outcomes)
		},
	}

	cmd.Flags().BoolVar(&includeUntracked, "include-untracked", false, "Stage untracked files too")

	return cmd
}
