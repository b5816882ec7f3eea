package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// allowedPrefixes are the span attribute namespaces cif emits.
var allowedPrefixes = []string{
	"cif.",
	"assessment.",
	"change.",
	"rule.",
	"mcp.",
	"error.",
}

// blockedPrefixes carry user-supplied free text (file paths, metadata values)
// and never leave the process.
var blockedPrefixes = []string{
	"change.path",
	"change.metadata.",
}

// attributeFilter is a SpanProcessor that strips attributes outside the
// allow-list before forwarding spans to the exporter.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that filters span attributes.
// When logger is non-nil, dropped keys are logged at debug level.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

// OnStart delegates to the wrapped processor.
func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd filters attributes, then delegates to the wrapped processor.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

// Shutdown delegates to the wrapped processor.
func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

// ForceFlush delegates to the wrapped processor.
func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

// AllowedAttribute reports whether a span attribute key may be exported.
func AllowedAttribute(key string) bool {
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return false
		}
	}

	if key == "error" {
		return true
	}

	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

func (f *attributeFilter) allowed(key string) bool {
	if AllowedAttribute(key) {
		return true
	}

	if f.logger != nil {
		f.logger.Debug("span attribute dropped", "key", key)
	}

	return false
}

// filteredSpan wraps a ReadOnlySpan and returns only allowed attributes.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the allowed attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.allowed(string(kv.Key)) {
			kept = append(kept, kv)
		}
	}

	return kept
}
