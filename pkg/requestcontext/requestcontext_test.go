package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestContext(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, ClientIP(ctx))
		assert.Empty(t, UserAgent(ctx))
		assert.Equal(t, Unknown, ClientIPOrUnknown(ctx))
		assert.Equal(t, Unknown, UserAgentOrUnknown(ctx))
	})

	t.Run("stored values", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithClientMetadata(ctx, "203.0.113.5", "curl/8.0")
		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "203.0.113.5", ClientIPOrUnknown(ctx))
		assert.Equal(t, "curl/8.0", UserAgentOrUnknown(ctx))
	})
}
