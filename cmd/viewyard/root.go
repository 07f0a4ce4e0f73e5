package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dheater/viewyard/internal/config"
	"github.com/dheater/viewyard/internal/git"
	"github.com/dheater/viewyard/internal/log"
	"github.com/dheater/viewyard/internal/output"
	"github.com/dheater/viewyard/internal/ui"
	"github.com/dheater/viewyard/internal/view"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg     *config.Config
	workDir string
)

// Command group IDs for organizing help output
const (
	GroupView   = "view"
	GroupRepo   = "repo"
	GroupConfig = "config"
)

// Exit codes: repo-level partial failures are distinct from usage,
// precondition, and configuration errors so scripts can tell them apart.
const (
	exitPartialFailure = 1
	exitUsage          = 2
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "viewyard",
	Short: "Multi-repo development views on a shared task branch",
	Long: `viewyard materializes views: directories where a curated set of git
repositories is checked out on one branch named after the task at hand.

Commands that touch every repository never stop at the first failure;
each repository reports its own outcome.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip git check for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed by now, so the logger sees their final values.
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(cmd.ErrOrStderr(), verbose, quiet)))

		// Check git is available
		return git.CheckGit()
	},
	// Run is not set - shows help when no subcommand provided
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewyard: %v\n", err)
		os.Exit(exitUsage)
	}
	cfg = &loadedCfg

	// Get working directory
	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewyard: failed to get working directory: %v\n", err)
		os.Exit(exitUsage)
	}

	// Create context with signal handling. The logger is attached in
	// PersistentPreRunE once the verbose/quiet flags have been parsed.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for primary data, colors downsampled
	// to the terminal's capabilities)
	ctx = output.WithPrinter(ctx, ui.NewWriter(os.Stdout))

	// Store context for commands to use
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, view.ErrPartialFailure) {
			// Outcomes were already printed per repository
			os.Exit(exitPartialFailure)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show git commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupView, Title: "View Commands:"},
		&cobra.Group{ID: GroupRepo, Title: "Multi-Repo Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// View commands
	rootCmd.AddCommand(newViewCmd())

	// Multi-repo commands
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCommitAllCmd())
	rootCmd.AddCommand(newPushAllCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newDiffCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
