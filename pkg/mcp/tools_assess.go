package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
)

func (s *Server) handleAssess(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ChangeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("change.identifier", input.Identifier),
		attribute.Int("change.files", len(input.Files)),
	)

	res, err := s.engine.Assess(input.toChange())
	if err != nil {
		kind := assess.ErrorKind(err)
		s.assessments.RecordError(ctx, kind)
		span.SetAttributes(attribute.String("error.kind", kind))
		s.logger.WarnContext(ctx, "assessment rejected",
			"tool", ToolNameAssess, "identifier", input.Identifier, "kind", kind, "error", err)

		return errorResult(err)
	}

	s.assessments.RecordAssessment(ctx, res.Classification.String(), res.Score, res.FiredRules())
	span.SetAttributes(
		attribute.String("assessment.classification", res.Classification.String()),
		attribute.Float64("assessment.score", res.Score),
	)
	s.logger.DebugContext(ctx, "assessment complete",
		"tool", ToolNameAssess, "identifier", res.Identifier,
		"classification", res.Classification.String(), "score", res.Score)

	return jsonResult(res)
}

func (s *Server) handleSignals(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ChangeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	set, err := s.engine.Signals(input.toChange())
	if err != nil {
		s.logger.WarnContext(ctx, "signal extraction rejected",
			"tool", ToolNameSignals, "identifier", input.Identifier, "error", err)

		return errorResult(err)
	}

	return jsonResult(set.Values())
}

func (s *Server) handleRules(
	_ context.Context, _ *mcpsdk.CallToolRequest, _ RulesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(map[string]any{"rules": s.engine.Rules()})
}
