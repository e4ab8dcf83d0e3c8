package config_test

import (
	"os"
	"testing"

	"github.com/attrflow/reactor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.HTTP.Port)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
	assert.Equal(t, 1000, cfg.Telemetry.BufferSize)
	assert.Equal(t, 10000, cfg.Limits.MaxRedefinitionDepth)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("REACTOR_HTTP_PORT", "9999")
	t.Setenv("REACTOR_TRACING_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "reactor-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("http:\n  port: 7070\ntelemetry:\n  buffer_size: 50\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := config.Load(f.Name())
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, 50, cfg.Telemetry.BufferSize)
}

func TestLoad_MissingConfigFileIsError(t *testing.T) {
	_, err := config.Load("/nonexistent/path/reactor.yaml")
	require.Error(t, err)
}
