package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/cif/pkg/change"
)

// ErrInvalidDocument is returned by validate when the document is rejected.
var ErrInvalidDocument = errors.New("change document is invalid")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <change.json|->",
		Short: "Validate a change document",
		Long: `Validate a change document against the change JSON schema and the
input validator used by assess.

Examples:
  cif validate change.json
  cif validate - < change.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, flagNoColor, false, "disable colored output")

	return cmd
}

type painter struct {
	noColor bool
}

func (p painter) fprintf(w io.Writer, attr color.Attribute, format string, args ...any) {
	c := color.New(attr)
	if p.noColor {
		c.DisableColor()
	}

	_, _ = c.Fprintf(w, format, args...)
}

func runValidate(cmd *cobra.Command, path string, noColor bool) error {
	out := cmd.OutOrStdout()
	p := painter{noColor: noColor}

	data, label, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decodeErr := dec.Decode(&doc)
	if decodeErr != nil {
		p.fprintf(out, color.FgRed, "Invalid JSON in %s: %v\n", label, decodeErr)

		return fmt.Errorf("%w: %s", ErrInvalidDocument, label)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(change.SchemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	in, parseErr := change.Parse(data)

	if result.Valid() && parseErr == nil {
		p.fprintf(out, color.FgGreen, "Change is valid (%s)\n", label)
		p.fprintf(out, color.FgGreen, "  %s: %s, %s\n", in.Identifier,
			english.Plural(in.DistinctPaths(), "file", ""),
			english.Plural(in.TotalLines(), "changed line", ""))

		return nil
	}

	p.fprintf(out, color.FgRed, "Change validation failed (%s)\n", label)
	fmt.Fprintf(out, "\nErrors:\n")

	for _, verr := range result.Errors() {
		p.fprintf(out, color.FgRed, "  - %s: %s\n", verr.Field(), verr.Description())
	}

	var fieldErr *change.ValidationError
	if errors.As(parseErr, &fieldErr) {
		p.fprintf(out, color.FgYellow, "  - %s: %v\n", fieldErr.Field, fieldErr.Err)
	} else if parseErr != nil {
		p.fprintf(out, color.FgYellow, "  - %v\n", parseErr)
	}

	return fmt.Errorf("%w: %s", ErrInvalidDocument, label)
}
