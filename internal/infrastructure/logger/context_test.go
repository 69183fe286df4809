package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithContextAndFromContext(t *testing.T) {
	t.Run("round trips logger", func(t *testing.T) {
		log := zap.NewExample()
		ctx := WithContext(context.Background(), log)

		got := FromContext(ctx)
		assert.Same(t, log, got)
	})

	t.Run("returns noop logger when absent", func(t *testing.T) {
		got := FromContext(context.Background())
		require.NotNil(t, got)
		// Must be safe to log without panicking
		got.Info("noop")
	})
}

func TestWithRequestID(t *testing.T) {
	log := zap.NewExample()
	ctx, enriched := WithRequestID(context.Background(), log, "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
	// The enriched logger is also stored back in the context
	assert.Same(t, enriched, FromContext(ctx))
}

func TestWithTenantID(t *testing.T) {
	log := zap.NewExample()
	ctx, enriched := WithTenantID(context.Background(), log, "tenant-456")

	assert.NotNil(t, enriched)
	assert.Equal(t, "tenant-456", GetTenantID(ctx))
	assert.Same(t, enriched, FromContext(ctx))
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetTenantID(context.Background()))
}
