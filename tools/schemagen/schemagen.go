// Package main generates the JSON schema of the assessment result that
// `cif assess --format json` prints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
)

const (
	schemaDraft = "https://json-schema.org/draft/2020-12/schema"
	resultFile  = "result.json"
	dirPerm     = 0o755
	filePerm    = 0o644
)

func main() {
	var outputDir string

	flag.StringVar(&outputDir, "o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	err := run(outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string) error {
	err := os.MkdirAll(outputDir, dirPerm)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	schema, err := resultSchema()
	if err != nil {
		return err
	}

	path := filepath.Join(outputDir, resultFile)

	err = writeSchema(path, schema)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Generated %s\n", path)

	return nil
}

// resultSchema derives the schema from assess.Result. Classification is an
// integer in Go but marshals as its name.
func resultSchema() (*jsonschema.Schema, error) {
	names := make([]any, 0, len(assess.Classifications()))
	for _, c := range assess.Classifications() {
		names = append(names, c.String())
	}

	schema, err := jsonschema.For[assess.Result](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[assess.Classification](): {Type: "string", Enum: names},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("derive result schema: %w", err)
	}

	schema.Schema = schemaDraft
	schema.Title = "Assessment Result"
	schema.Description = "Risk classification of one change, with the score and the rationale of every rule that fired."

	return schema, nil
}

func writeSchema(path string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), filePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
