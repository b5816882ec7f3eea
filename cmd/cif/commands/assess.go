package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/observability"
	"github.com/Sumatoshi-tech/cif/pkg/report"
)

// ErrThresholdReached is returned when --fail-on is met. The report has
// already been written.
var ErrThresholdReached = errors.New("risk threshold reached")

type assessOptions struct {
	configPath  string
	format      string
	noColor     bool
	diff        bool
	identifier  string
	metricsFile string
	failOn      string
}

// NewAssessCommand creates the assess command.
func NewAssessCommand() *cobra.Command {
	opts := &assessOptions{}

	cmd := &cobra.Command{
		Use:   "assess <change.json|->",
		Short: "Assess the risk of a change",
		Long: `Assess a change document and print its classification, score, and rationale.

The input is a JSON change document, or a unified diff with --diff.
Use - to read from stdin.

Examples:
  cif assess change.json
  git diff main | cif assess --diff --id PR-42 -
  cif assess --format text --fail-on high change.json`,
		Args: cobra.ExactArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.configPath, flagConfig, "c", "", "config file (default: .cif.yaml in the working or home directory)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatJSON),
		"output format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().BoolVar(&opts.noColor, flagNoColor, false, "disable colored text output")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "treat the input as a unified diff")
	cmd.Flags().StringVar(&opts.identifier, "id", "", "change identifier for diff input (default: input file name)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write assessment metrics in Prometheus text format to this file")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit non-zero when the classification is at least this level")

	return cmd
}

func (o *assessOptions) run(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}

	threshold, hasThreshold, err := o.threshold()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	providers, err := initObservability(cmd, cfg, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := providers.Tracer.Start(ctx, "cif.assess")
	defer span.End()

	metrics, err := observability.NewAssessmentMetrics(providers.Meter)
	if err != nil {
		return err
	}

	in, engine, err := o.load(cmd, args[0], cfg)
	if err != nil {
		kind := assess.ErrorKind(err)
		metrics.RecordError(ctx, kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)

		return err
	}

	span.SetAttributes(
		attribute.String("change.identifier", in.Identifier),
		attribute.Int("change.files", len(in.Files)),
	)

	res, err := engine.Assess(in)
	if err != nil {
		kind := assess.ErrorKind(err)
		metrics.RecordError(ctx, kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)

		return err
	}

	class := res.Classification.String()
	metrics.RecordAssessment(ctx, class, res.Score, res.FiredRules())
	span.SetAttributes(
		attribute.String("assessment.classification", class),
		attribute.Float64("assessment.score", res.Score),
	)
	providers.Logger.DebugContext(ctx, "assessment complete",
		"identifier", res.Identifier, "classification", class, "score", res.Score, "fired", len(res.Contributions))

	if o.metricsFile != "" {
		err = writeMetricsFile(ctx, o.metricsFile, res)
		if err != nil {
			return err
		}
	}

	// Signals cannot fail here: the input already passed validation.
	set, err := engine.Signals(in)
	if err != nil {
		return err
	}

	err = report.Write(cmd.OutOrStdout(), format, res, report.Options{NoColor: o.noColor, Signals: &set})
	if err != nil {
		return err
	}

	if hasThreshold && res.Classification >= threshold {
		return fmt.Errorf("%w: %s is at or above %s", ErrThresholdReached, class, threshold)
	}

	return nil
}

func (o *assessOptions) threshold() (assess.Classification, bool, error) {
	if o.failOn == "" {
		return assess.Low, false, nil
	}

	c, err := assess.ParseClassification(o.failOn)
	if err != nil {
		return assess.Low, false, fmt.Errorf("--fail-on: %w", err)
	}

	return c, true, nil
}

// load reads and decodes the input and builds the engine. Decoding runs
// first so input errors are reported before configuration errors.
func (o *assessOptions) load(cmd *cobra.Command, path string, cfg *config.Config) (change.Input, *assess.Engine, error) {
	data, label, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return change.Input{}, nil, err
	}

	var in change.Input

	if o.diff {
		id := o.identifier
		if id == "" {
			id = diffIdentifier(label)
		}

		matcher := change.NewAreaMatcher(cfg.Diff.Areas)

		in, err = change.FromUnifiedDiff(bytes.NewReader(data), id, matcher.Area)
	} else {
		in, err = change.Parse(data)
	}

	if err != nil {
		return change.Input{}, nil, fmt.Errorf("%s: %w", label, err)
	}

	engine, err := assess.New(*cfg)
	if err != nil {
		return change.Input{}, nil, err
	}

	return in, engine, nil
}

func diffIdentifier(label string) string {
	base := filepath.Base(label)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeMetricsFile(ctx context.Context, path string, res assess.Result) error {
	rec, err := observability.NewTextfileRecorder()
	if err != nil {
		return err
	}

	class := res.Classification.String()
	rec.Metrics.RecordAssessment(ctx, class, res.Score, res.FiredRules())
	rec.SetLastScore(res.Identifier, class, res.Score)

	return errors.Join(rec.WriteFile(path), rec.Shutdown(ctx))
}
