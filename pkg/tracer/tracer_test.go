package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func TestNewResource(t *testing.T) {
	res, err := NewResource(context.Background(), "order-service", "")
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "order-service", attrs[string(semconv.ServiceNameKey)])
	assert.Equal(t, "release", attrs["environment"])
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	tp, err := InitTracer("order-service", "", "test")
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
