package tracer

import (
	"context"
	"testing"

	"eval-assistant-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerDisabledLeavesGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown := InitTracer(&config.Config{Otel: config.OtelConfig{Enabled: false}})

	assert.NoError(t, shutdown(context.Background()))
	assert.Same(t, before, otel.GetTracerProvider())
}

func TestNewProviderUsesConfiguredSampling(t *testing.T) {
	tp, err := newProvider(context.Background(), config.OtelConfig{
		Endpoint:    "localhost:4318",
		Insecure:    true,
		ServiceName: "eval-assistant-be-test",
		SampleRatio: 0,
	})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
