package otel

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenos/pkg/logger"
)

func TestTracing(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", GetTraceID)
	tp, shutdown, err := InitTracing(log, Config{ServiceName: "test", Probability: 1.0})
	require.NoError(t, err)
	defer shutdown(context.Background())

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := InjectTracing(context.Background(), tp.Tracer("test"))
	ctx, span := AddSpan(ctx, "op")
	defer span.End()
	assert.Len(t, GetTraceID(ctx), 32)
}
