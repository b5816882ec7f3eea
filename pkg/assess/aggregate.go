package assess

import (
	"fmt"

	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
)

// Policy combines rule severities into a score.
type Policy string

// Aggregation policies.
const (
	PolicySum      Policy = config.PolicySum
	PolicyWeighted Policy = config.PolicyWeighted
	PolicyMax      Policy = config.PolicyMax
)

// Contribution records how one firing rule moved the score.
type Contribution struct {
	Rule         string  `json:"rule"         yaml:"rule"`
	Severity     float64 `json:"severity"     yaml:"severity"`
	Weight       float64 `json:"weight"       yaml:"weight"`
	Contribution float64 `json:"contribution" yaml:"contribution"`
}

// Aggregator turns rule outcomes into a score, a classification, and an
// ordered rationale.
type Aggregator struct {
	policy  Policy
	weights map[string]float64
	table   Table
}

// NewAggregator validates the policy, weights, and table.
func NewAggregator(policy Policy, weights map[string]float64, table Table) (*Aggregator, error) {
	switch policy {
	case PolicySum, PolicyWeighted, PolicyMax:
	default:
		return nil, config.Invalid("aggregation.policy", config.ErrInvalidPolicy, fmt.Sprintf("got %q", policy))
	}

	w := make(map[string]float64, len(weights))

	for name, v := range weights {
		if v < 0 {
			return nil, config.Invalid("aggregation.weights."+name, config.ErrNegativeWeight, fmt.Sprintf("got %v", v))
		}

		w[name] = v
	}

	if len(table) == 0 {
		return nil, config.Invalid("classification", config.ErrEmptyClassification, "")
	}

	return &Aggregator{policy: policy, weights: w, table: table}, nil
}

func (a *Aggregator) weight(rule string) float64 {
	if a.policy != PolicyWeighted {
		return 1
	}

	if v, ok := a.weights[rule]; ok {
		return v
	}

	return 1
}

// Aggregate folds outcomes in order. Non-firing outcomes are skipped.
// Rationale entries are kept in outcome order without deduplication.
func (a *Aggregator) Aggregate(outcomes []rules.Outcome) (float64, Classification, []string, []Contribution) {
	score := 0.0
	rationale := make([]string, 0, len(outcomes))
	contributions := make([]Contribution, 0, len(outcomes))

	for _, o := range outcomes {
		if !o.Fired() {
			continue
		}

		w := a.weight(o.Rule)
		c := o.Severity * w

		switch a.policy {
		case PolicyMax:
			if c > score {
				score = c
			}
		default:
			score += c
		}

		rationale = append(rationale, o.Rationale)
		contributions = append(contributions, Contribution{
			Rule:         o.Rule,
			Severity:     o.Severity,
			Weight:       w,
			Contribution: c,
		})
	}

	return score, a.table.Classify(score), rationale, contributions
}
