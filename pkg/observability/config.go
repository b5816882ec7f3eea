// Package observability provides OpenTelemetry tracing and metrics plus
// structured slog logging for the cif CLI and MCP server.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the CLI command execution mode.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "cif"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Standard OTel exporter environment variables, plus the deployment
// environment name.
const (
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	EnvOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvEnvironment  = "CIF_ENV"
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "ci", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	// Zero samples everything under a parent-based sampler.
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogWriter receives log output. Nil means stderr.
	LogWriter io.Writer

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// WithEnv overlays exporter settings from environment variables read
// through lookup (usually os.LookupEnv).
func (c Config) WithEnv(lookup func(string) (string, bool)) Config {
	if v, ok := lookup(EnvOTLPEndpoint); ok {
		c.OTLPEndpoint = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvOTLPHeaders); ok {
		c.OTLPHeaders = ParseOTLPHeaders(v)
	}

	if v, ok := lookup(EnvOTLPInsecure); ok {
		insecure, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			c.OTLPInsecure = insecure
		}
	}

	if v, ok := lookup(EnvEnvironment); ok {
		c.Environment = strings.TrimSpace(v)
	}

	return c
}

// ParseLevel parses a log level name such as "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}

	return level, nil
}

// ParseOTLPHeaders parses an OTLP headers string in "key=value,key=value"
// format. Returns nil for empty or invalid input.
func ParseOTLPHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	result := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}

		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
