package rules_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

func ptr(f float64) *float64 { return &f }

func evaluate(t *testing.T, rule rules.Rule, in change.Input) rules.Outcome {
	t.Helper()

	out, err := rule.Eval(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)

	return out
}

func TestDiffSize_RationaleNamesBucketAndLines(t *testing.T) {
	t.Parallel()

	rule := rules.DiffSize(config.Default().Rules.DiffSize.Severity)

	in := change.Input{Identifier: "d", Files: []change.FileChange{{Path: "a.go", LinesAdded: 400, LinesRemoved: 100}}}
	out := evaluate(t, rule, in)
	assert.True(t, out.Fired())
	assert.InDelta(t, config.DefaultDiffSizeSeverityLarge, out.Severity, 1e-9)
	assert.Equal(t, "diff size is large: 500 changed lines", out.Rationale)

	small := change.Input{Identifier: "s", Files: []change.FileChange{{Path: "a.go", LinesAdded: 3}}}
	assert.False(t, evaluate(t, rule, small).Fired())
}

func TestCriticalArea_RationaleListsAreas(t *testing.T) {
	t.Parallel()

	rule := rules.CriticalArea(config.DefaultCriticalAreaSeverity)
	in := change.Input{
		Identifier: "c1",
		Files: []change.FileChange{
			{Path: "auth/login.py", LinesAdded: 5, LinesRemoved: 2, Area: "auth"},
			{Path: "pay/card.py", LinesAdded: 1, Area: "billing"},
		},
	}

	out := evaluate(t, rule, in)
	assert.InDelta(t, config.DefaultCriticalAreaSeverity, out.Severity, 1e-9)
	assert.Equal(t, "touches critical area: auth, billing", out.Rationale)
}

func TestCoverageRegression(t *testing.T) {
	t.Parallel()

	rule := rules.CoverageRegression(config.DefaultCoverageSeverity)
	in := change.Input{Identifier: "cov", Files: []change.FileChange{{Path: "a.go"}}, CoverageDelta: ptr(-1.2)}

	out := evaluate(t, rule, in)
	assert.Equal(t, "test coverage regressed by 1.20 percentage points (tolerance 0.50)", out.Rationale)

	in.CoverageDelta = nil
	assert.False(t, evaluate(t, rule, in).Fired())
}

func TestFileCount_Rationale(t *testing.T) {
	t.Parallel()

	rule := rules.FileCount(config.Default().Rules.FileCount.Severity)

	in := change.Input{Identifier: "fc"}
	for i := range 23 {
		in.Files = append(in.Files, change.FileChange{Path: "f" + string(rune('a'+i))})
	}

	out := evaluate(t, rule, in)
	assert.InDelta(t, config.DefaultFileCountSeverityLarge, out.Severity, 1e-9)
	assert.Equal(t, "touches 23 files (large)", out.Rationale)
}

func TestDependencyChange(t *testing.T) {
	t.Parallel()

	rule := rules.DependencyChange(config.DefaultDependencySeverity)
	in := change.Input{Identifier: "dep", Files: []change.FileChange{{Path: "go.mod", LinesAdded: 1}}}

	assert.Equal(t, "modifies dependency manifest: go.mod", evaluate(t, rule, in).Rationale)
}

func TestBreakingChange_ReadsMetadataFlag(t *testing.T) {
	t.Parallel()

	rule := rules.BreakingChange(config.DefaultBreakingSeverity, "breaking")
	in := change.Input{Identifier: "b", Files: []change.FileChange{{Path: "a.go"}}}

	assert.False(t, evaluate(t, rule, in).Fired())

	in.Metadata = change.Metadata{"breaking": "true"}
	assert.False(t, evaluate(t, rule, in).Fired(), "string is not a bool")

	in.Metadata = change.Metadata{"breaking": true}
	out := evaluate(t, rule, in)
	assert.Equal(t, "change is marked as breaking (metadata breaking=true)", out.Rationale)
}

func TestMissingTests(t *testing.T) {
	t.Parallel()

	rule := rules.MissingTests(config.DefaultMissingTestsSeverity)

	untested := change.Input{Identifier: "u", Files: []change.FileChange{{Path: "svc/handler.go", LinesAdded: 4}}}
	assert.Equal(t, "changes 1 source files without touching tests", evaluate(t, rule, untested).Rationale)

	tested := change.Input{Identifier: "t", Files: []change.FileChange{
		{Path: "svc/handler.go", LinesAdded: 4},
		{Path: "svc/handler_test.go", LinesAdded: 9},
	}}
	assert.False(t, evaluate(t, rule, tested).Fired())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	reg := rules.NewRegistry()
	require.NoError(t, reg.Add(rules.CriticalArea(1)))

	err := reg.Add(rules.CriticalArea(2))
	require.ErrorIs(t, err, config.ErrDuplicateRule)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_EvaluateKeepsOrderAndNormalizesNonFiring(t *testing.T) {
	t.Parallel()

	reg := rules.NewRegistry()
	require.NoError(t, reg.Add(rules.Rule{
		Name: "negative",
		Eval: func(change.Input, signals.Set) (rules.Outcome, error) {
			return rules.Outcome{Severity: -3, Rationale: "ignored"}, nil
		},
	}))
	require.NoError(t, reg.Add(rules.Rule{
		Name: "always",
		Eval: func(change.Input, signals.Set) (rules.Outcome, error) {
			return rules.Outcome{Rule: "wrong", Severity: 1, Rationale: "same"}, nil
		},
	}))
	require.NoError(t, reg.Add(rules.Rule{
		Name: "also",
		Eval: func(change.Input, signals.Set) (rules.Outcome, error) {
			return rules.Outcome{Severity: 2, Rationale: "same"}, nil
		},
	}))

	outs, err := reg.Evaluate(change.Input{}, signals.Set{})
	require.NoError(t, err)

	assert.Equal(t, []rules.Outcome{
		{Rule: "negative"},
		{Rule: "always", Severity: 1, Rationale: "same"},
		{Rule: "also", Severity: 2, Rationale: "same"},
	}, outs)
	assert.Equal(t, []string{"negative", "always", "also"}, reg.Names())
}

func TestRegistry_EvaluateWrapsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	reg := rules.NewRegistry()
	require.NoError(t, reg.Add(rules.Rule{
		Name: "broken",
		Eval: func(change.Input, signals.Set) (rules.Outcome, error) {
			return rules.Outcome{}, boom
		},
	}))

	outs, err := reg.Evaluate(change.Input{}, signals.Set{})
	assert.Nil(t, outs)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, rules.ErrEvaluation)

	var evalErr *rules.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "broken", evalErr.Rule)
}
