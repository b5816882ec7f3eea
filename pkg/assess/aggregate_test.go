package assess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
)

var sampleOutcomes = []rules.Outcome{
	{Rule: "a", Severity: 5, Rationale: "first"},
	{Rule: "b"},
	{Rule: "c", Severity: 20, Rationale: "dup"},
	{Rule: "d", Severity: 8, Rationale: "dup"},
}

func TestAggregate_SumKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	agg, err := assess.NewAggregator(assess.PolicySum, map[string]float64{"a": 10}, assess.DefaultTable())
	require.NoError(t, err)

	score, class, rationale, contributions := agg.Aggregate(sampleOutcomes)

	assert.InDelta(t, 33.0, score, 1e-9)
	assert.Equal(t, assess.High, class)
	assert.Equal(t, []string{"first", "dup", "dup"}, rationale)
	require.Len(t, contributions, 3)
	assert.InDelta(t, 1.0, contributions[0].Weight, 1e-9, "sum ignores weights")
}

func TestAggregate_Weighted(t *testing.T) {
	t.Parallel()

	agg, err := assess.NewAggregator(assess.PolicyWeighted, map[string]float64{"a": 2, "c": 0.5}, assess.DefaultTable())
	require.NoError(t, err)

	score, class, _, contributions := agg.Aggregate(sampleOutcomes)

	assert.InDelta(t, 10.0+10.0+8.0, score, 1e-9)
	assert.Equal(t, assess.Medium, class)
	assert.Equal(t, assess.Contribution{Rule: "c", Severity: 20, Weight: 0.5, Contribution: 10}, contributions[1])
}

func TestAggregate_Max(t *testing.T) {
	t.Parallel()

	agg, err := assess.NewAggregator(assess.PolicyMax, nil, assess.DefaultTable())
	require.NoError(t, err)

	score, class, rationale, _ := agg.Aggregate(sampleOutcomes)

	assert.InDelta(t, 20.0, score, 1e-9)
	assert.Equal(t, assess.Medium, class)
	assert.Len(t, rationale, 3)
}

func TestAggregate_NothingFires(t *testing.T) {
	t.Parallel()

	agg, err := assess.NewAggregator(assess.PolicySum, nil, assess.DefaultTable())
	require.NoError(t, err)

	score, class, rationale, contributions := agg.Aggregate([]rules.Outcome{{Rule: "x"}})

	assert.Zero(t, score)
	assert.Equal(t, assess.Low, class)
	assert.NotNil(t, rationale)
	assert.Empty(t, rationale)
	assert.NotNil(t, contributions)
}

func TestNewAggregator_Rejections(t *testing.T) {
	t.Parallel()

	_, err := assess.NewAggregator("median", nil, assess.DefaultTable())
	require.ErrorIs(t, err, config.ErrInvalidPolicy)

	_, err = assess.NewAggregator(assess.PolicyWeighted, map[string]float64{"a": -1}, assess.DefaultTable())
	require.ErrorIs(t, err, config.ErrNegativeWeight)

	_, err = assess.NewAggregator(assess.PolicySum, nil, nil)
	require.ErrorIs(t, err, config.ErrEmptyClassification)
}
