package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/Sumatoshi-tech/cif/pkg/config"
)

// Build assembles the enabled rules of cfg in evaluation order and compiles
// custom rules. Compile failures are *config.ConfigurationError.
func Build(cfg config.Config) (*Registry, error) {
	custom := make(map[string]int, len(cfg.CustomRules))
	for i, cr := range cfg.CustomRules {
		custom[cr.Name] = i
	}

	var env *cel.Env

	reg := NewRegistry()

	for _, name := range cfg.RuleOrder() {
		rule, enabled, ok := builtin(name, cfg.Rules)
		if !ok {
			idx, isCustom := custom[name]
			if !isCustom {
				return nil, config.Invalid("rules.order", config.ErrUnknownRule, name)
			}

			if env == nil {
				e, err := NewEnv()
				if err != nil {
					return nil, err
				}

				env = e
			}

			compiled, err := Custom(env, idx, cfg.CustomRules[idx])
			if err != nil {
				return nil, err
			}

			rule, enabled = compiled, true
		}

		if !enabled {
			continue
		}

		addErr := reg.Add(rule)
		if addErr != nil {
			return nil, addErr
		}
	}

	return reg, nil
}

// Info describes one configured rule for listings.
type Info struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Enabled     bool    `json:"enabled"`
	Severity    string  `json:"severity"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Rule kinds.
const (
	KindBuiltin = "builtin"
	KindCustom  = "custom"
)

// Describe lists every configured rule, enabled or not, in evaluation order.
func Describe(cfg config.Config) []Info {
	custom := make(map[string]config.CustomRuleConfig, len(cfg.CustomRules))
	for _, cr := range cfg.CustomRules {
		custom[cr.Name] = cr
	}

	infos := make([]Info, 0, len(cfg.RuleOrder()))

	for _, name := range cfg.RuleOrder() {
		info := Info{Name: name, Weight: cfg.Weight(name)}

		if rule, enabled, ok := builtin(name, cfg.Rules); ok {
			info.Kind = KindBuiltin
			info.Enabled = enabled
			info.Severity = severityLabel(name, cfg.Rules)
			info.Description = rule.Description
		} else {
			cr := custom[name]
			info.Kind = KindCustom
			info.Enabled = true
			info.Severity = formatSeverity(cr.Severity)
			info.Description = cr.When
		}

		infos = append(infos, info)
	}

	return infos
}

func severityLabel(name string, rc config.RulesConfig) string {
	switch name {
	case config.RuleDiffSize:
		return bucketLabel(rc.DiffSize.Severity)
	case config.RuleFileCount:
		return bucketLabel(rc.FileCount.Severity)
	case config.RuleCriticalArea:
		return formatSeverity(rc.CriticalArea.Severity)
	case config.RuleCoverageRegression:
		return formatSeverity(rc.CoverageRegression.Severity)
	case config.RuleDependencyChange:
		return formatSeverity(rc.DependencyChange.Severity)
	case config.RuleBreakingChange:
		return formatSeverity(rc.BreakingChange.Severity)
	case config.RuleMissingTests:
		return formatSeverity(rc.MissingTests.Severity)
	default:
		return ""
	}
}

func bucketLabel(s config.BucketSeverities) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		formatSeverity(s.Small), formatSeverity(s.Medium), formatSeverity(s.Large), formatSeverity(s.Huge))
}

func formatSeverity(v float64) string {
	return fmt.Sprintf("%g", v)
}
