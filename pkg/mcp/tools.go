package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/cif/pkg/change"
)

// Tool name constants.
const (
	ToolNameAssess  = "assess_change"
	ToolNameSignals = "change_signals"
	ToolNameRules   = "list_rules"
)

// FileInput is one changed file in a tool call.
type FileInput struct {
	Path         string `json:"path"           jsonschema:"repository-relative path of the changed file"`
	LinesAdded   int    `json:"lines_added"    jsonschema:"number of added lines"`
	LinesRemoved int    `json:"lines_removed"  jsonschema:"number of removed lines"`
	Area         string `json:"area,omitempty" jsonschema:"optional area tag (e.g. auth or billing)"`
}

// ChangeInput is the input schema for the assess_change and change_signals tools.
type ChangeInput struct {
	Identifier    string         `json:"identifier"               jsonschema:"identifier of the change (e.g. a pull request number)"`
	Files         []FileInput    `json:"files"                    jsonschema:"changed files; at least one is required"`
	CoverageDelta *float64       `json:"coverage_delta,omitempty" jsonschema:"change in test coverage in percentage points; omit when unknown"`
	Metadata      map[string]any `json:"metadata,omitempty"       jsonschema:"flat key/value metadata (e.g. breaking_change: true)"`
}

// RulesInput is the input schema for the list_rules tool.
type RulesInput struct{}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (in ChangeInput) toChange() change.Input {
	files := make([]change.FileChange, 0, len(in.Files))
	for _, f := range in.Files {
		files = append(files, change.FileChange{
			Path:         f.Path,
			LinesAdded:   f.LinesAdded,
			LinesRemoved: f.LinesRemoved,
			Area:         f.Area,
		})
	}

	var md change.Metadata
	if in.Metadata != nil {
		md = change.Metadata(in.Metadata)
	}

	return change.Input{
		Identifier:    in.Identifier,
		Files:         files,
		CoverageDelta: in.CoverageDelta,
		Metadata:      md,
	}
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
