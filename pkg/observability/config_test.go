package observability_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/observability"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "cif", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestConfig_WithEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		observability.EnvOTLPEndpoint: " collector:4317 ",
		observability.EnvOTLPHeaders:  "api-key=secret, team = risk",
		observability.EnvOTLPInsecure: "true",
		observability.EnvEnvironment:  "ci",
	}

	cfg := observability.DefaultConfig().WithEnv(func(k string) (string, bool) {
		v, ok := env[k]

		return v, ok
	})

	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, map[string]string{"api-key": "secret", "team": "risk"}, cfg.OTLPHeaders)
	assert.True(t, cfg.OTLPInsecure)
	assert.Equal(t, "ci", cfg.Environment)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := observability.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = observability.ParseLevel("chatty")
	require.Error(t, err)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("novalue"))
	assert.Equal(t, map[string]string{"a": "1"}, observability.ParseOTLPHeaders("a=1,broken"))
}
