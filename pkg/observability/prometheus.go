package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/otlptranslator"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const metricLastScore = "cif_assessment_last_score"

// TextfileRecorder collects assessment metrics in a private Prometheus
// registry so they can be written for the node_exporter textfile collector.
// Each recorder is independent; several may exist in one process.
type TextfileRecorder struct {
	// Metrics records into the recorder's registry.
	Metrics *AssessmentMetrics

	registry  *prometheus.Registry
	provider  *sdkmetric.MeterProvider
	lastScore *prometheus.GaugeVec
}

// NewTextfileRecorder creates a recorder backed by an OTel MeterProvider
// whose reader is a Prometheus exporter.
func NewTextfileRecorder() (*TextfileRecorder, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
		promexporter.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	metrics, err := NewAssessmentMetrics(provider.Meter(meterName))
	if err != nil {
		return nil, errors.Join(err, provider.Shutdown(context.Background()))
	}

	lastScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: metricLastScore,
		Help: "Score of the most recent assessment per change identifier.",
	}, []string{"identifier", attrClassification})

	err = registry.Register(lastScore)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("register %s: %w", metricLastScore, err), provider.Shutdown(context.Background()))
	}

	return &TextfileRecorder{
		Metrics:   metrics,
		registry:  registry,
		provider:  provider,
		lastScore: lastScore,
	}, nil
}

// SetLastScore records the score of an assessment under its identifier.
func (r *TextfileRecorder) SetLastScore(identifier, classification string, score float64) {
	r.lastScore.WithLabelValues(identifier, classification).Set(score)
}

// Gatherer exposes the recorder's registry.
func (r *TextfileRecorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes all collected metrics to path in the Prometheus text
// format. The file is replaced atomically.
func (r *TextfileRecorder) WriteFile(path string) error {
	err := prometheus.WriteToTextfile(path, r.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}

// Shutdown releases the underlying meter provider.
func (r *TextfileRecorder) Shutdown(ctx context.Context) error {
	err := r.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown textfile recorder: %w", err)
	}

	return nil
}
