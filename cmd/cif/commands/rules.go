package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	var (
		configPath  string
		showSignals bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the effective rule set",
		Long: `Show the rules in evaluation order with their severity, weight, and
whether they are enabled, after applying the configuration file.
With --signals, show the signal catalog that rule expressions can read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if showSignals {
				return writeCatalog(out, signals.Catalog(), asJSON)
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			err = cfg.Validate()
			if err != nil {
				return err
			}

			return writeRules(out, rules.Describe(*cfg), asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, flagConfig, "c", "", "config file (default: .cif.yaml in the working or home directory)")
	cmd.Flags().BoolVar(&showSignals, "signals", false, "show the signal catalog instead of the rules")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	return tbl
}

func writeRules(w io.Writer, infos []rules.Info, asJSON bool) error {
	if asJSON {
		return writeJSON(w, infos)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "Rule", "Kind", "Enabled", "Severity", "Weight", "Description"})

	for i, info := range infos {
		tbl.AppendRow(table.Row{
			i + 1,
			info.Name,
			info.Kind,
			strconv.FormatBool(info.Enabled),
			info.Severity,
			strconv.FormatFloat(info.Weight, 'g', -1, 64),
			info.Description,
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d rules", len(infos))})

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}

func writeCatalog(w io.Writer, catalog []signals.Descriptor, asJSON bool) error {
	if asJSON {
		return writeJSON(w, catalog)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Signal", "Type", "Description"})

	for _, d := range catalog {
		tbl.AppendRow(table.Row{d.Name, d.Type, d.Description})
	}

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}
