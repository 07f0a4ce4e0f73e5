package main

import (
	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/view"
)

func newPushAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "push-all",
		Short:   "Push every repository with commits to publish",
		GroupID: GroupRepo,
		Args:    cobra.NoArgs,
		Long: `Push every repository of the enclosing view that has commits to
publish. The first push of a branch creates the remote branch and sets
it as upstream. Repositories without a remote are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			viewDir, m, err := currentView()
			if err != nil {
				return err
			}

			c := view.NewCoordinator(viewDir, m, concurrencyLimit())
			return printOutcomes(out, c.PushAll(ctx))
		},
	}
}
