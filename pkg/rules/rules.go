// Package rules evaluates risk rules over a change and its signals.
//
// A rule inspects an input and its signals and either fires with a positive
// severity and a rationale naming the triggering value, or does not fire.
// Rules are pure and independent; a Registry runs them in a fixed order.
package rules

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

// Outcome is the result of evaluating one rule.
type Outcome struct {
	Rule      string  `json:"rule"`
	Severity  float64 `json:"severity"`
	Rationale string  `json:"rationale,omitempty"`
}

// Fired reports whether the rule fired.
func (o Outcome) Fired() bool {
	return o.Severity > 0
}

// EvalFunc evaluates a rule.
type EvalFunc func(in change.Input, set signals.Set) (Outcome, error)

// Rule is a named evaluation function.
type Rule struct {
	Name        string
	Description string
	Eval        EvalFunc
}

// ErrEvaluation is matched by every EvaluationError.
var ErrEvaluation = errors.New("rule evaluation failed")

// EvaluationError reports a rule that failed at evaluation time.
type EvaluationError struct {
	Rule string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrEvaluation, e.Rule, e.Err)
}

// Unwrap exposes both ErrEvaluation and the cause.
func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Err}
}

// Registry is an ordered set of uniquely named rules.
type Registry struct {
	rules []Rule
	names map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add appends a rule. Names must be unique.
func (r *Registry) Add(rule Rule) error {
	if _, dup := r.names[rule.Name]; dup {
		return config.Invalid("rules", config.ErrDuplicateRule, rule.Name)
	}

	r.names[rule.Name] = struct{}{}
	r.rules = append(r.rules, rule)

	return nil
}

// Names returns rule names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name)
	}

	return names
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Evaluate runs every rule in order and returns all outcomes, fired or not.
// Outcomes that do not fire carry zero severity and no rationale.
// The first rule error aborts evaluation.
func (r *Registry) Evaluate(in change.Input, set signals.Set) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(r.rules))

	for _, rule := range r.rules {
		out, err := rule.Eval(in, set)
		if err != nil {
			var evalErr *EvaluationError
			if errors.As(err, &evalErr) {
				return nil, err
			}

			return nil, &EvaluationError{Rule: rule.Name, Err: err}
		}

		out.Rule = rule.Name
		if !out.Fired() {
			out = Outcome{Rule: rule.Name}
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

func fire(severity float64, format string, args ...any) Outcome {
	if severity <= 0 {
		return Outcome{}
	}

	return Outcome{Severity: severity, Rationale: fmt.Sprintf(format, args...)}
}
