package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/focus/pkg/logger"
)

func TestAttachKeepsIncomingRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "abc")
	rc.Request.Header.Set(HeaderUserID, "user-1")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "abc", appLogger.RequestID(ctx))
	assert.Equal(t, "abc", string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "user-1", UserID(&rc))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	id := appLogger.RequestID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Empty(t, UserID(&rc))
}
