package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floatchat/internal/config"
)

// keepDefaultLogger restores the slog default that NewLogger replaces.
func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewLogger_JSON(t *testing.T) {
	keepDefaultLogger(t)
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"})

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.IsType(t, &slog.JSONHandler{}, logger.Handler())
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_Text(t *testing.T) {
	keepDefaultLogger(t)
	logger := NewLogger(&config.Config{LogLevel: "DEBUG", LogFormat: "TEXT"})

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.IsType(t, &slog.TextHandler{}, logger.Handler())
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	keepDefaultLogger(t)
	logger := NewLogger(&config.Config{LogLevel: "nonsense"})

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
}

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	for _, c := range m.collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.Queries.WithLabelValues("ok").Inc()
	m.AugmenterRequests.WithLabelValues("mistral", "augment", "success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				names[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.InDelta(t, 1, names["floatchat_queries_total"], 0)
	assert.InDelta(t, 1, names["floatchat_augmenter_requests_total"], 0)
}
