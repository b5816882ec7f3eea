package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

const msgNoRulesFired = "No rules fired."

// Text writes a human-readable summary of res followed by a table of the
// rules that fired.
func Text(w io.Writer, res assess.Result, opts Options) error {
	var b strings.Builder

	classColor := classificationColor(res.Classification)
	if opts.NoColor {
		classColor.DisableColor()
	}

	fmt.Fprintf(&b, "%s  %s  score %s\n",
		res.Identifier,
		classColor.Sprint(strings.ToUpper(res.Classification.String())),
		formatNumber(res.Score))

	if opts.Signals != nil {
		b.WriteString(signalSummary(*opts.Signals))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if len(res.Contributions) == 0 {
		b.WriteString(msgNoRulesFired)
		b.WriteString("\n")
	} else {
		b.WriteString(contributionTable(res))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func contributionTable(res assess.Result) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"Rule", "Severity", "Weight", "Contribution", "Rationale"})

	for i, c := range res.Contributions {
		rationale := ""
		if i < len(res.Rationale) {
			rationale = res.Rationale[i]
		}

		tbl.AppendRow(table.Row{
			c.Rule,
			formatNumber(c.Severity),
			formatNumber(c.Weight),
			formatNumber(c.Contribution),
			rationale,
		})
	}

	return tbl.Render()
}

func signalSummary(set signals.Set) string {
	parts := []string{
		fmt.Sprintf("%s changed %s (%s)",
			humanize.Comma(int64(set.TotalLines)),
			english.PluralWord(set.TotalLines, "line", ""),
			set.DiffSizeBucket),
		fmt.Sprintf("%s %s (%s)",
			humanize.Comma(int64(set.FileCount)),
			english.PluralWord(set.FileCount, "file", ""),
			set.FileCountBucket),
	}

	if set.CoverageKnown {
		parts = append(parts, fmt.Sprintf("coverage %+.2f", set.CoverageDelta))
	} else {
		parts = append(parts, "coverage unknown")
	}

	if len(set.Languages) > 0 {
		parts = append(parts, strings.Join(set.Languages, ", "))
	}

	return strings.Join(parts, " | ")
}

func classificationColor(c assess.Classification) *color.Color {
	switch c {
	case assess.Low:
		return color.New(color.FgGreen)
	case assess.Medium:
		return color.New(color.FgYellow)
	case assess.High:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
