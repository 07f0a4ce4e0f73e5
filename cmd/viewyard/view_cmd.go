package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/format"
	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/ui"
	"github.com/dheater/viewyard/internal/view"
	"github.com/dheater/viewyard/internal/viewset"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view",
		Short:   "Create, list, and delete views",
		GroupID: GroupView,
		Long: `Manage views: directories where every repository of a viewset is
checked out on one branch named after the view.`,
		Example: `  viewyard view create fix-login        # materialize a view for task fix-login
  viewyard view create fix-login api    # only the api repo from the viewset
  viewyard view list                    # list existing views
  viewyard view delete fix-login        # delete (refuses when unclean)
  viewyard view validate                # check viewsets.yaml`,
	}

	cmd.AddCommand(newViewCreateCmd())
	cmd.AddCommand(newViewListCmd())
	cmd.AddCommand(newViewDeleteCmd())
	cmd.AddCommand(newViewValidateCmd())

	return cmd
}

func newViewCreateCmd() *cobra.Command {
	var viewsetFlag string

	cmd := &cobra.Command{
		Use:   "create <name> [repo...]",
		Short: "Materialize a view",
		Args:  cobra.MinimumNArgs(1),
		Long: `Create a view named <name>: clone (or reuse) every repository of the
viewset, check out a branch named <name> in each, and apply the resolved
git identity to each repository's local config.

Positional repo names select a subset of the viewset. A repository
failure never aborts the others; the view is created with whatever
succeeded and the report shows the rest.`,
		Example: `  viewyard view create fix-login
  viewyard view create fix-login --viewset work
  viewyard view create fix-login api frontend`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			f, err := viewset.Load()
			if err != nil {
				return view.Preconditionf("%v", err)
			}
			vsName, vs, err := resolveViewset(f, viewsetFlag)
			if err != nil {
				return err
			}
			repos, err := vs.Select(args[1:])
			if err != nil {
				return view.Preconditionf("%v", err)
			}

			m, outcomes, err := view.Create(ctx, view.CreateOptions{
				Name:        args[0],
				Viewset:     vsName,
				Repos:       repos,
				Root:        viewsRoot(),
				Shallow:     cfg.Clone.Shallow,
				Concurrency: concurrencyLimit(),
			})
			if err != nil {
				return err
			}

			log.FromContext(ctx).Printf("created view %s with %d of %d repositories\n",
				args[0], len(m.Repos), len(repos))
			return printOutcomes(out, outcomes)
		},
	}

	cmd.Flags().StringVar(&viewsetFlag, "viewset", "", "Viewset to materialize (default from config)")

	return cmd
}

// viewDisplay holds view info for display
type viewDisplay struct {
	Name     string    `json:"name"`
	Viewset  string    `json:"viewset"`
	Repos    int       `json:"repos"`
	Modified time.Time `json:"modified"`
	Path     string    `json:"path"`
}

func newViewListCmd() *cobra.Command {
	var (
		jsonOutput  bool
		viewsetFlag string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List views",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Long: `List views under the views root. Only manifests are read; no git
commands run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			summaries, err := view.List(viewsRoot())
			if err != nil {
				return err
			}

			display := make([]viewDisplay, 0, len(summaries))
			for _, s := range summaries {
				if viewsetFlag != "" && s.Viewset != viewsetFlag {
					continue
				}
				display = append(display, viewDisplay{
					Name:     s.Name,
					Viewset:  s.Viewset,
					Repos:    s.RepoCount,
					Modified: s.ModTime,
					Path:     s.Path,
				})
			}

			if jsonOutput {
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(display)
			}

			if len(display) == 0 {
				out.Println("No views found")
				return nil
			}

			headers := []string{"VIEW", "VIEWSET", "REPOS", "MODIFIED"}
			var rows [][]string
			for _, d := range display {
				rows = append(rows, []string{
					d.Name,
					d.Viewset,
					strconv.Itoa(d.Repos),
					format.RelativeTime(d.Modified),
				})
			}
			out.Print(ui.RenderTable(headers, rows))

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&viewsetFlag, "viewset", "", "Only views of this viewset")

	return cmd
}

func newViewDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a view",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		Long: `Delete a view directory. Refuses when any repository has uncommitted
changes or unpushed commits, naming them; --force deletes regardless.
Upstream remotes are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Forcing skips the cleanliness gate, so ask first when
			// someone is actually at the keyboard.
			if force && !confirm(fmt.Sprintf("delete view %s even if unclean?", args[0])) {
				return nil
			}

			if err := view.Delete(ctx, viewsRoot(), args[0], force, concurrencyLimit()); err != nil {
				return err
			}
			log.FromContext(ctx).Printf("deleted view %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even with unclean repositories")

	return cmd
}

func newViewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the viewsets configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			f, err := viewset.Load()
			if err != nil {
				return view.Preconditionf("%v", err)
			}

			path, _ := viewset.Path()
			out.Printf("%s is valid\n", path)
			for _, name := range f.Names() {
				vs, _ := f.Get(name)
				out.Printf("  %s: %d repositories\n", name, len(vs.Repos))
			}
			return nil
		},
	}
}
