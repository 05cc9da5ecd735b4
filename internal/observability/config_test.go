package observability

import (
	"testing"

	"github.com/smallbiznis/obtain/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DEPLOYMENT_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")

	cfg := LoadConfig(config.Config{AppName: " ", Environment: "development", OTLPEndpoint: "collector:4317"})

	assert.Equal(t, "obtain", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigProductionIsNotDebug(t *testing.T) {
	t.Setenv("DEPLOYMENT_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := LoadConfig(config.Config{AppName: "obtain"})

	assert.False(t, cfg.Debug())
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "warn", cfg.LogLevel)
}
