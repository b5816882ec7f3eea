// Package commands implements the cif CLI commands.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cif/pkg/version"
)

const (
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
	flagConfig  = "config"
	flagNoColor = "no-color"
)

// ErrMissingCommand is returned when cif runs without a subcommand.
var ErrMissingCommand = errors.New("missing command")

// NewRootCommand creates the cif root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cif",
		Short: "cif - change impact assessment",
		Long: `cif scores a proposed code change and classifies its risk as
low, medium, high, or critical, with a rationale for every rule that fired.

Commands:
  assess    Assess a change document or unified diff
  validate  Validate a change document
  rules     Show the effective rule set or the signal catalog
  mcp       Serve the assessment engine over MCP stdio`,
		SilenceErrors: true,
		Args:          unknownCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usageErr := cmd.Usage()
			if usageErr != nil {
				return usageErr
			}

			return ErrMissingCommand
		},
		// Usage is shown for argument and flag errors only.
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolP(flagQuiet, "q", false, "log errors only")

	rootCmd.AddCommand(NewAssessCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewRulesCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// unknownCommand rejects positional arguments that name no subcommand.
// Cobra prints usage for it since it runs before PersistentPreRun.
func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())

	suggestions := cmd.SuggestionsFor(args[0])
	if len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}

	return errors.New(msg)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
