// Package report renders assessment results as JSON, YAML, or a text table.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

const (
	jsonIndent = "  "
	yamlIndent = 2
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns the supported format names.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatText)}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))

	switch f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
	}
}

// Options tune rendering. Only the text format reads them.
type Options struct {
	NoColor bool
	// Signals, when set, adds a summary line to text output.
	Signals *signals.Set
}

// Write renders res to w in the given format.
func Write(w io.Writer, format Format, res assess.Result, opts Options) error {
	switch format {
	case FormatJSON:
		return JSON(w, res)
	case FormatYAML:
		return YAML(w, res)
	case FormatText:
		return Text(w, res, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSON writes res as JSON indented with two spaces, followed by a newline.
func JSON(w io.Writer, res assess.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)

	err := enc.Encode(res)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// YAML writes res as a YAML document.
func YAML(w io.Writer, res assess.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(res)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
