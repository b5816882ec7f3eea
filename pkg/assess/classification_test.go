package assess_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/config"
)

func TestClassification_OrderAndNames(t *testing.T) {
	t.Parallel()

	all := assess.Classifications()
	require.Len(t, all, 4)

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}

	assert.Equal(t, "critical", assess.Critical.String())

	got, err := assess.ParseClassification(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, assess.High, got)

	_, err = assess.ParseClassification("severe")
	require.ErrorIs(t, err, config.ErrUnknownClassification)
}

func TestClassification_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		C assess.Classification `json:"c"`
	}{assess.Medium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"medium"}`, string(data))

	var back struct {
		C assess.Classification `json:"c"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, assess.Medium, back.C)
}

func TestTable_InclusiveLowerBound(t *testing.T) {
	t.Parallel()

	table := assess.DefaultTable()

	tests := []struct {
		score float64
		want  assess.Classification
	}{
		{0, assess.Low},
		{9.999, assess.Low},
		{10, assess.Medium},
		{29, assess.Medium},
		{30, assess.High},
		{59.5, assess.High},
		{60, assess.Critical},
		{1e6, assess.Critical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Classify(tt.score), "score=%v", tt.score)
	}
}

func TestNewTable_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bands []config.BandConfig
		want  error
	}{
		{"empty", nil, config.ErrEmptyClassification},
		{"first not zero", []config.BandConfig{{Threshold: 5, Classification: "low"}}, config.ErrFirstBandNotZero},
		{"unknown name", []config.BandConfig{{Threshold: 0, Classification: "meh"}}, config.ErrUnknownClassification},
		{"threshold not increasing", []config.BandConfig{
			{Threshold: 0, Classification: "low"},
			{Threshold: 0, Classification: "high"},
		}, config.ErrNonMonotonicClassification},
		{"classification not increasing", []config.BandConfig{
			{Threshold: 0, Classification: "medium"},
			{Threshold: 10, Classification: "low"},
		}, config.ErrNonMonotonicClassification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := assess.NewTable(tt.bands)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestNewTable_SkippedClassificationsAllowed(t *testing.T) {
	t.Parallel()

	table, err := assess.NewTable([]config.BandConfig{
		{Threshold: 0, Classification: "low"},
		{Threshold: 50, Classification: "critical"},
	})
	require.NoError(t, err)

	assert.Equal(t, assess.Low, table.Classify(49))
	assert.Equal(t, assess.Critical, table.Classify(50))
}
