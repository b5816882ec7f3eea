package rules

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

// CEL variable names available to custom rules.
const (
	VarChange  = "change"
	VarSignals = "signals"
)

// Errors returned when a custom rule yields a value of the wrong type.
var (
	ErrNotBool   = errors.New("when expression did not yield a bool")
	ErrNotString = errors.New("rationale expression did not yield a string")
)

// NewEnv creates the CEL environment custom rules compile against.
// Optional field selection is enabled so a rule can read a metadata key
// with a default, e.g. change.metadata.?hotfix.orValue(false). A plain
// selection of an absent key is an evaluation error.
func NewEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarChange, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(VarSignals, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
		cel.OptionalTypes(),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return env, nil
}

// Custom compiles a custom rule. index locates the rule in the
// configuration for error reporting.
func Custom(env *cel.Env, index int, cr config.CustomRuleConfig) (Rule, error) {
	key := fmt.Sprintf("custom_rules[%d]", index)

	when, err := compile(env, key+".when", cr.When, cel.BoolType)
	if err != nil {
		return Rule{}, err
	}

	rationale, err := compile(env, key+".rationale", cr.Rationale, cel.StringType)
	if err != nil {
		return Rule{}, err
	}

	severity := cr.Severity

	return Rule{
		Name:        cr.Name,
		Description: "custom: " + cr.When,
		Eval: func(in change.Input, set signals.Set) (Outcome, error) {
			vars := map[string]any{
				VarChange:  Activation(in),
				VarSignals: set.Values(),
			}

			matched, _, evalErr := when.Eval(vars)
			if evalErr != nil {
				return Outcome{}, &EvaluationError{Rule: cr.Name, Err: fmt.Errorf("when: %w", evalErr)}
			}

			ok, isBool := matched.Value().(bool)
			if !isBool {
				return Outcome{}, &EvaluationError{Rule: cr.Name, Err: fmt.Errorf("%w: got %s", ErrNotBool, matched.Type().TypeName())}
			}

			if !ok || severity <= 0 {
				return Outcome{}, nil
			}

			text, _, evalErr := rationale.Eval(vars)
			if evalErr != nil {
				return Outcome{}, &EvaluationError{Rule: cr.Name, Err: fmt.Errorf("rationale: %w", evalErr)}
			}

			msg, isString := text.Value().(string)
			if !isString {
				return Outcome{}, &EvaluationError{Rule: cr.Name, Err: fmt.Errorf("%w: got %s", ErrNotString, text.Type().TypeName())}
			}

			return Outcome{Severity: severity, Rationale: msg}, nil
		},
	}, nil
}

func compile(env *cel.Env, key, expr string, want *cel.Type) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, config.Invalid(key, config.ErrInvalidExpression, issues.Err().Error())
	}

	out := ast.OutputType()
	if !out.IsExactType(want) && !out.IsExactType(cel.DynType) {
		return nil, config.Invalid(key, config.ErrInvalidExpression,
			fmt.Sprintf("expression must yield %s, got %s", want, out))
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, config.Invalid(key, config.ErrInvalidExpression, err.Error())
	}

	return prg, nil
}

// Activation renders an input as the CEL "change" variable: identifier,
// files (path, lines_added, lines_removed, area), coverage_delta (null when
// unknown), and metadata.
func Activation(in change.Input) map[string]any {
	files := make([]any, 0, len(in.Files))
	for _, f := range in.Files {
		files = append(files, map[string]any{
			change.FieldPath:         f.Path,
			change.FieldLinesAdded:   int64(f.LinesAdded),
			change.FieldLinesRemoved: int64(f.LinesRemoved),
			change.FieldArea:         f.Area,
		})
	}

	var coverage any
	if in.CoverageDelta != nil {
		coverage = *in.CoverageDelta
	}

	metadata := make(map[string]any, len(in.Metadata))
	for k, v := range in.Metadata {
		metadata[k] = v
	}

	return map[string]any{
		change.FieldIdentifier:    in.Identifier,
		change.FieldFiles:         files,
		change.FieldCoverageDelta: coverage,
		change.FieldMetadata:      metadata,
	}
}
