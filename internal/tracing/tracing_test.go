package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"decision-console/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInit_DisabledKeepsNoop(t *testing.T) {
	shutdown, err := Init(config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("x").Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestInit_WritesSpansToFile(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	out := filepath.Join(t.TempDir(), "traces", "spans.jsonl")

	shutdown, err := Init(config.TracingConfig{Enabled: true, TracerName: "console-test", SampleRatio: 1, Output: out})
	require.NoError(t, err)

	_, span := otel.Tracer("console-test").Start(context.Background(), "store.fetchTasks")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"store.fetchTasks"`)
	assert.Contains(t, string(data), "console-test")
}

func TestNewProvider_ClampsSampleRatio(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewProvider(config.TracingConfig{SampleRatio: 0}, sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("x").Start(context.Background(), "op")
	span.End()
	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "op", rec.Ended()[0].Name())
}
