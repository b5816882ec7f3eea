package assess

import (
	"errors"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
)

// Error kinds reported by ErrorKind.
const (
	KindValidation    = "validation"
	KindDecode        = "decode"
	KindConfiguration = "configuration"
	KindEvaluation    = "evaluation"
	KindInternal      = "internal"
)

// ErrorKind classifies an error returned while building or running an
// engine, for metrics and structured logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, change.ErrDecode):
		return KindDecode
	case errors.Is(err, change.ErrInvalidInput):
		return KindValidation
	case errors.Is(err, config.ErrInvalidConfig):
		return KindConfiguration
	case errors.Is(err, rules.ErrEvaluation):
		return KindEvaluation
	default:
		return KindInternal
	}
}

// FiredRules returns the names of the rules that contributed to r.
func (r Result) FiredRules() []string {
	names := make([]string, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		names = append(names, c.Rule)
	}

	return names
}
