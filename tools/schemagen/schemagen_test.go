package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/report"
)

func TestResultSchema_AcceptsReportOutput(t *testing.T) {
	t.Parallel()

	schema, err := resultSchema()
	require.NoError(t, err)

	resolved, err := schema.Resolve(nil)
	require.NoError(t, err)

	res, err := assess.AssessChange(change.Input{
		Identifier: "c1",
		Files:      []change.FileChange{{Path: "auth/login.py", LinesAdded: 5, LinesRemoved: 2, Area: "auth"}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.JSON(&buf, res))

	var instance map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &instance))

	require.NoError(t, resolved.Validate(instance))

	instance["classification"] = "severe"
	require.Error(t, resolved.Validate(instance))
}

func TestRun_WritesSchemaFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "schemas")
	require.NoError(t, run(dir))

	data, err := os.ReadFile(filepath.Join(dir, resultFile))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Assessment Result", decoded["title"])
	assert.Contains(t, decoded["required"], "classification")
}
