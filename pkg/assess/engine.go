// Package assess scores a change and classifies its risk.
//
// An Engine is built once from a config.Config and is then pure: Assess
// validates the input, extracts signals, evaluates rules in order, and
// aggregates their severities. Engines hold no mutable state and are safe
// for concurrent use.
package assess

import (
	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

// Result is the outcome of one assessment. It is built once per call and
// owned by the caller.
type Result struct {
	Identifier     string         `json:"identifier"     yaml:"identifier"`
	Classification Classification `json:"classification" yaml:"classification"`
	Score          float64        `json:"score"          yaml:"score"`
	// Rationale has one entry per firing rule, in evaluation order.
	// It is never nil.
	Rationale     []string       `json:"rationale"      yaml:"rationale"`
	Contributions []Contribution `json:"contributions"  yaml:"contributions"`
}

// Engine evaluates changes against a fixed configuration.
type Engine struct {
	signals    signals.Config
	registry   *rules.Registry
	aggregator *Aggregator
}

// New validates cfg and builds an engine. Invalid configuration yields a
// *config.ConfigurationError.
func New(cfg config.Config) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	sigCfg := signals.FromConfig(cfg.Signals)

	err = sigCfg.Validate()
	if err != nil {
		return nil, err
	}

	table, err := NewTable(cfg.Classification)
	if err != nil {
		return nil, err
	}

	aggregator, err := NewAggregator(Policy(cfg.Aggregation.Policy), cfg.Aggregation.Weights, table)
	if err != nil {
		return nil, err
	}

	registry, err := rules.Build(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{signals: sigCfg, registry: registry, aggregator: aggregator}, nil
}

// Rules returns the enabled rule names in evaluation order.
func (e *Engine) Rules() []string {
	return e.registry.Names()
}

// Assess validates in and returns its assessment. Invalid input yields a
// *change.ValidationError; a failing custom rule yields a
// *rules.EvaluationError. No partial result is returned on error.
func (e *Engine) Assess(in change.Input) (Result, error) {
	err := in.Validate()
	if err != nil {
		return Result{}, err
	}

	set := signals.Extract(in, e.signals)

	outcomes, err := e.registry.Evaluate(in, set)
	if err != nil {
		return Result{}, err
	}

	score, class, rationale, contributions := e.aggregator.Aggregate(outcomes)

	return Result{
		Identifier:     in.Identifier,
		Classification: class,
		Score:          score,
		Rationale:      rationale,
		Contributions:  contributions,
	}, nil
}

// Signals returns the signals the engine derives from in, without
// evaluating rules.
func (e *Engine) Signals(in change.Input) (signals.Set, error) {
	err := in.Validate()
	if err != nil {
		return signals.Set{}, err
	}

	return signals.Extract(in, e.signals), nil
}

// AssessChange assesses in with the default configuration.
func AssessChange(in change.Input) (Result, error) {
	engine, err := New(config.Default())
	if err != nil {
		return Result{}, err
	}

	return engine.Assess(in)
}
