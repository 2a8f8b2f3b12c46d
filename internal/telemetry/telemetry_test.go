package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledIsUsable(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	// Disabled telemetry still hands out working no-op tracers.
	tracer := tel.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()

	degraded, reason := tel.Degraded()
	assert.False(t, degraded)
	assert.Empty(t, reason)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.SampleRate = 2

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"disabled skips checks", func(c *Config) { c.Endpoint = "" }, ""},
		{"enabled defaults valid", func(c *Config) { c.Enabled = true }, ""},
		{"missing endpoint", func(c *Config) {
			c.Enabled = true
			c.Endpoint = ""
		}, "endpoint"},
		{"missing service name", func(c *Config) {
			c.Enabled = true
			c.ServiceName = ""
		}, "service_name"},
		{"bad protocol", func(c *Config) {
			c.Enabled = true
			c.Protocol = "thrift"
		}, "protocol"},
		{"sample rate out of range", func(c *Config) {
			c.Enabled = true
			c.SampleRate = 1.5
		}, "sample_rate"},
		{"insecure remote endpoint", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "collector.example.com:4317"
		}, "insecure"},
		{"secure remote endpoint", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "collector.example.com:4317"
			c.Insecure = false
		}, ""},
		{"nonpositive shutdown", func(c *Config) {
			c.Enabled = true
			c.Shutdown = 0
		}, "shutdown_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		local    bool
	}{
		{"localhost:4317", true},
		{"127.0.0.1:4317", true},
		{"[::1]:4317", true},
		{"localhost", true},
		{"collector.example.com:4317", false},
		{"10.0.0.5:4317", false},
	}
	for _, tt := range tests {
		cfg := NewDefaultConfig()
		cfg.Endpoint = tt.endpoint
		assert.Equal(t, tt.local, cfg.isLocalEndpoint(), tt.endpoint)
	}
}

func TestTestTelemetryRecordsSpans(t *testing.T) {
	tel := NewTestTelemetry()
	tracer := tel.Tracer("test")

	_, span := tracer.Start(context.Background(), "plan queries")
	span.End()

	require.Len(t, tel.Spans(), 1)
	assert.Equal(t, "plan queries", tel.Spans()[0].Name())
	assert.NotNil(t, tel.SpanByName("plan queries"))
	assert.Nil(t, tel.SpanByName("missing"))
}

func TestNilTelemetryTracer(t *testing.T) {
	var tel *Telemetry
	tracer := tel.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, tel.Shutdown(context.Background()))
}
