package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/mcp"
	"github.com/Sumatoshi-tech/cif/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the assessment engine as tools that AI agents can
discover and invoke:
  - assess_change: classify the risk of a change
  - change_signals: extract the signals of a change without scoring it
  - list_rules: list the enabled rules in evaluation order

Logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			engine, err := assess.New(*cfg)
			if err != nil {
				return err
			}

			providers, err := initObservability(cmd, cfg, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer shutdownProviders(providers)

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			am, err := observability.NewAssessmentMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(engine, mcp.ServerDeps{
				Logger:      providers.Logger,
				Metrics:     red,
				Assessments: am,
				Tracer:      providers.Tracer,
			})

			providers.Logger.InfoContext(cmd.Context(), "mcp server starting", "tools", srv.ListToolNames())

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, flagConfig, "c", "", "config file (default: .cif.yaml in the working or home directory)")

	return cmd
}
