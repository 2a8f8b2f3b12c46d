package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewValidatesConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"console format valid", func(c *Config) { c.Format = "console" }, false},
		{"bad format", func(c *Config) { c.Format = "text" }, true},
		{"empty field key", func(c *Config) { c.Fields = map[string]string{"": "x"} }, true},
		{"empty field value", func(c *Config) { c.Fields = map[string]string{"env": ""} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestTestLoggerCapturesEntries(t *testing.T) {
	log := NewTestLogger()
	ctx := context.Background()

	log.Info(ctx, "pipeline started", zap.String("query", "q"))
	log.Error(ctx, "pipeline failed")

	entries := log.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "pipeline started", entries[0].Message)
	assert.Equal(t, "q", entries[0].ContextMap()["query"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	log.AssertLogged(t, zapcore.InfoLevel, "pipeline started")

	log.Reset()
	assert.Empty(t, log.All())
}

func TestRequestIDTravelsWithContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "trace_abc123")
	assert.Equal(t, "trace_abc123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	// Empty ids are not attached.
	assert.Empty(t, RequestIDFromContext(WithRequestID(context.Background(), "")))

	log := NewTestLogger()
	log.Info(ctx, "dispatching agent")

	entries := log.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "trace_abc123", entries[0].ContextMap()["request.id"])
}

func TestContextFieldsWithoutCorrelation(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestNamedAndWith(t *testing.T) {
	log := NewTestLogger()
	child := log.Logger.Named("runner").With(zap.String("component", "dispatch"))
	child.Info(context.Background(), "ready")

	entries := log.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0].LoggerName)
	assert.Equal(t, "dispatch", entries[0].ContextMap()["component"])
}

func TestEnabled(t *testing.T) {
	log := NewTestLogger()
	assert.True(t, log.Enabled(zapcore.DebugLevel))

	nop := NewNop()
	assert.NotNil(t, nop)
	// Nop loggers accept writes without side effects.
	nop.Info(context.Background(), "ignored")
	require.NoError(t, nop.Sync())
}
