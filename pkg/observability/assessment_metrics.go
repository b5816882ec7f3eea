package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricAssessmentsTotal = "cif.assessments.total"
	metricAssessmentScore  = "cif.assessment.score"
	metricRuleFiredTotal   = "cif.rule.fired.total"
	metricAssessmentErrors = "cif.assessment.errors.total"

	attrClassification = "classification"
	attrRule           = "rule"
	attrKind           = "kind"
)

// scoreBucketBoundaries straddle the default classification thresholds.
var scoreBucketBoundaries = []float64{0, 5, 10, 20, 30, 45, 60, 90, 120}

// AssessmentMetrics holds OTel instruments for assessment outcomes.
type AssessmentMetrics struct {
	assessments metric.Int64Counter
	score       metric.Float64Histogram
	ruleFired   metric.Int64Counter
	errors      metric.Int64Counter
}

// NewAssessmentMetrics creates assessment metric instruments from the given meter.
func NewAssessmentMetrics(mt metric.Meter) (*AssessmentMetrics, error) {
	assessments, err := mt.Int64Counter(metricAssessmentsTotal,
		metric.WithDescription("Completed assessments by classification"),
		metric.WithUnit("{assessment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAssessmentsTotal, err)
	}

	score, err := mt.Float64Histogram(metricAssessmentScore,
		metric.WithDescription("Aggregate risk score per assessment"),
		metric.WithUnit("{score}"),
		metric.WithExplicitBucketBoundaries(scoreBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAssessmentScore, err)
	}

	fired, err := mt.Int64Counter(metricRuleFiredTotal,
		metric.WithDescription("Rules that fired, by rule name"),
		metric.WithUnit("{rule}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRuleFiredTotal, err)
	}

	errs, err := mt.Int64Counter(metricAssessmentErrors,
		metric.WithDescription("Failed assessments by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAssessmentErrors, err)
	}

	return &AssessmentMetrics{
		assessments: assessments,
		score:       score,
		ruleFired:   fired,
		errors:      errs,
	}, nil
}

// RecordAssessment records one completed assessment.
// Safe to call on a nil receiver (no-op).
func (am *AssessmentMetrics) RecordAssessment(ctx context.Context, classification string, score float64, firedRules []string) {
	if am == nil {
		return
	}

	am.assessments.Add(ctx, 1, metric.WithAttributes(attribute.String(attrClassification, classification)))
	am.score.Record(ctx, score)

	for _, rule := range firedRules {
		am.ruleFired.Add(ctx, 1, metric.WithAttributes(attribute.String(attrRule, rule)))
	}
}

// RecordError records a failed assessment.
// Safe to call on a nil receiver (no-op).
func (am *AssessmentMetrics) RecordError(ctx context.Context, kind string) {
	if am == nil {
		return
	}

	am.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}
