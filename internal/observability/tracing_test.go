package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{ServiceName: "test-service", OTLPEndpoint: "localhost:4317"})

	require.NoError(t, err)
	assert.False(t, tracer.Enabled())
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

//nolint:paralleltest // installs a global tracer provider
func TestNewTracer_Enabled_NoEndpoint(t *testing.T) {
	tracer, err := NewTracer(TracerConfig{Enabled: true, SamplingRate: 1})
	require.NoError(t, err)
	require.True(t, tracer.Enabled())

	_, span := otel.Tracer("navrouter/test").Start(context.Background(), "navigation.navigate")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
	assert.NoError(t, (&Tracer{}).Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate float64
		want string
	}{
		{name: "always", rate: 1.0, want: sdktrace.AlwaysSample().Description()},
		{name: "above one", rate: 2.0, want: sdktrace.AlwaysSample().Description()},
		{name: "never", rate: 0, want: sdktrace.NeverSample().Description()},
		{name: "negative", rate: -1, want: sdktrace.NeverSample().Description()},
		{name: "ratio", rate: 0.5, want: sdktrace.TraceIDRatioBased(0.5).Description()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, samplerFor(tt.rate).Description())
		})
	}
}

func TestExporterOptions(t *testing.T) {
	t.Parallel()

	assert.Len(t, exporterOptions("localhost:4317"), 4)
}
