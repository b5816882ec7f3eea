package assess

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/cif/pkg/config"
)

// Classification is an ordered risk level.
type Classification int

// Classifications in ascending order of risk.
const (
	Low Classification = iota
	Medium
	High
	Critical
)

var classificationNames = [...]string{"low", "medium", "high", "critical"}

// String returns the lowercase name.
func (c Classification) String() string {
	if c < Low || c > Critical {
		return fmt.Sprintf("classification(%d)", int(c))
	}

	return classificationNames[c]
}

// MarshalText encodes the classification as its lowercase name.
func (c Classification) MarshalText() ([]byte, error) {
	if c < Low || c > Critical {
		return nil, fmt.Errorf("%w: %d", config.ErrUnknownClassification, int(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText decodes a lowercase classification name.
func (c *Classification) UnmarshalText(text []byte) error {
	parsed, err := ParseClassification(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseClassification parses a classification name, case-insensitively.
func ParseClassification(s string) (Classification, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for i, n := range classificationNames {
		if n == name {
			return Classification(i), nil
		}
	}

	return Low, fmt.Errorf("%w: %q", config.ErrUnknownClassification, s)
}

// Classifications returns every classification in ascending order.
func Classifications() []Classification {
	return []Classification{Low, Medium, High, Critical}
}

// Band maps scores at or above Threshold to Classification.
type Band struct {
	Threshold      float64
	Classification Classification
}

// Table is a classification table ordered by ascending threshold.
type Table []Band

// DefaultTable returns 0 low, 10 medium, 30 high, 60 critical.
func DefaultTable() Table {
	return Table{
		{Threshold: 0, Classification: Low},
		{Threshold: config.DefaultMediumThreshold, Classification: Medium},
		{Threshold: config.DefaultHighThreshold, Classification: High},
		{Threshold: config.DefaultCriticalThreshold, Classification: Critical},
	}
}

// NewTable builds a table from configuration. The first threshold must be 0
// and bands must strictly increase in both threshold and classification.
func NewTable(bands []config.BandConfig) (Table, error) {
	if len(bands) == 0 {
		return nil, config.Invalid("classification", config.ErrEmptyClassification, "")
	}

	table := make(Table, 0, len(bands))

	for i, b := range bands {
		key := fmt.Sprintf("classification[%d]", i)

		c, err := ParseClassification(b.Classification)
		if err != nil {
			return nil, config.Invalid(key+".classification", config.ErrUnknownClassification, fmt.Sprintf("got %q", b.Classification))
		}

		if i == 0 && b.Threshold != 0 {
			return nil, config.Invalid(key+".threshold", config.ErrFirstBandNotZero, fmt.Sprintf("got %v", b.Threshold))
		}

		if i > 0 {
			prev := table[i-1]
			if b.Threshold <= prev.Threshold || c <= prev.Classification {
				return nil, config.Invalid(key, config.ErrNonMonotonicClassification,
					fmt.Sprintf("%v %s after %v %s", b.Threshold, c, prev.Threshold, prev.Classification))
			}
		}

		table = append(table, Band{Threshold: b.Threshold, Classification: c})
	}

	return table, nil
}

// Classify returns the classification of the highest band whose threshold
// is at most score. Scores below the first threshold get the first band.
func (t Table) Classify(score float64) Classification {
	if len(t) == 0 {
		return Low
	}

	result := t[0].Classification

	for _, b := range t {
		if score < b.Threshold {
			break
		}

		result = b.Classification
	}

	return result
}
