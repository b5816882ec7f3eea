// Package mcp implements a Model Context Protocol server exposing the cif
// assessment engine as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/observability"
	"github.com/Sumatoshi-tech/cif/pkg/version"
)

const (
	serverName = "cif"

	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields disable the corresponding concern.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder.
	Metrics *observability.REDMetrics

	// Assessments records assessment outcomes.
	Assessments *observability.AssessmentMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the cif tool registrations.
type Server struct {
	inner       *mcpsdk.Server
	engine      *assess.Engine
	logger      *slog.Logger
	mu          sync.RWMutex
	tools       []string
	metrics     *observability.REDMetrics
	assessments *observability.AssessmentMetrics
	tracer      trace.Tracer
}

// NewServer creates an MCP server that assesses changes with engine.
func NewServer(engine *assess.Engine, deps ServerDeps) *Server {
	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		inner:       inner,
		engine:      engine,
		logger:      logger,
		tools:       make([]string, 0, toolCount),
		metrics:     deps.Metrics,
		assessments: deps.Assessments,
		tracer:      deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameAssess,
		Description: assessToolDescription,
	}, withMetrics(s.metrics, ToolNameAssess, withTracing(s.tracer, ToolNameAssess, s.handleAssess)))
	s.trackTool(ToolNameAssess)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSignals,
		Description: signalsToolDescription,
	}, withMetrics(s.metrics, ToolNameSignals, withTracing(s.tracer, ToolNameSignals, s.handleSignals)))
	s.trackTool(ToolNameSignals)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameRules,
		Description: rulesToolDescription,
	}, withMetrics(s.metrics, ToolNameRules, withTracing(s.tracer, ToolNameRules, s.handleRules)))
	s.trackTool(ToolNameRules)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing wraps a tool handler in a server span and appends the
// trace_id to the response when the span is sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	assessToolDescription = "Assess the risk of a proposed code change. " +
		"Accepts the changed files with line counts, an optional coverage delta, and metadata; " +
		"returns a classification (low, medium, high, critical), a score, and the rationale."

	signalsToolDescription = "Extract the risk signals (diff size bucket, critical areas, coverage regression, " +
		"file count bucket, file classes) of a proposed code change without scoring it."

	rulesToolDescription = "List the enabled assessment rules in evaluation order."
)
