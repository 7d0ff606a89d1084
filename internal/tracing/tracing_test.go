package tracing_test

import (
	"context"
	"testing"

	"github.com/kiranshivaraju/logtrends/internal/config"
	"github.com/kiranshivaraju/logtrends/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_NoEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := tracing.Init(context.Background(), config.TracingConfig{ServiceName: "logtrends"}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider(), "provider must be left untouched")
}

func TestInit_WithEndpoint(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	shutdown, err := tracing.Init(context.Background(), config.TracingConfig{
		Endpoint:    "http://127.0.0.1:4318",
		ServiceName: "logtrends",
	}, "test")
	require.NoError(t, err)

	assert.NotEqual(t, prevProvider, otel.GetTracerProvider())
	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")

	// nothing was recorded, so shutdown does not need the collector
	assert.NoError(t, shutdown(context.Background()))
}
