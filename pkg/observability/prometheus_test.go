package observability_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/observability"
)

func TestTextfileRecorder_WritesAssessmentMetrics(t *testing.T) {
	t.Parallel()

	rec, err := observability.NewTextfileRecorder()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, rec.Shutdown(context.Background())) })

	rec.Metrics.RecordAssessment(context.Background(), "medium", 20, []string{"critical_area"})
	rec.SetLastScore("c1", "medium", 20)

	path := filepath.Join(t.TempDir(), "cif.prom")
	require.NoError(t, rec.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `cif_assessment_last_score{classification="medium",identifier="c1"} 20`)
	assert.Contains(t, text, "cif_assessments")
	assert.Contains(t, text, `classification="medium"`)
	assert.Contains(t, text, `rule="critical_area"`)
}

func TestTextfileRecorder_IndependentRegistries(t *testing.T) {
	t.Parallel()

	first, err := observability.NewTextfileRecorder()
	require.NoError(t, err)

	second, err := observability.NewTextfileRecorder()
	require.NoError(t, err)

	first.SetLastScore("a", "low", 1)

	families, err := second.Gatherer().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		assert.NotEqual(t, "cif_assessment_last_score", mf.GetName(), "second recorder must not see first's gauge samples")
	}
}
