package main

import (
	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/config"
	"github.com/dheater/viewyard/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage viewyard configuration.

Tool config: ~/.config/viewyard/config.toml
Viewsets:    ~/.config/viewyard/viewsets.yaml`,
		Example: `  viewyard config init      # Create default config
  viewyard config init -f   # Overwrite existing config`,
	}

	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			path, err := config.Init(force)
			if err != nil {
				return err
			}
			out.Printf("wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}
