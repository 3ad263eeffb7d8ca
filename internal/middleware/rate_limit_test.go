package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func TestRateLimiter_Allow(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("1.1.1.1", now))
	}
	require.False(t, l.Allow("1.1.1.1", now))

	// Other clients have their own budget.
	require.True(t, l.Allow("2.2.2.2", now))

	// One request comes back every window/limit.
	require.True(t, l.Allow("1.1.1.1", now.Add(20*time.Second)))
	require.False(t, l.Allow("1.1.1.1", now.Add(20*time.Second)))

	// Idle clients are forgotten after a window.
	require.Equal(t, 2, l.size())
	require.True(t, l.Allow("3.3.3.3", now.Add(2*time.Minute)))
	require.Equal(t, 1, l.size())
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx := testutil.MockContext()
	l := NewRateLimiter(1, time.Minute)

	newRequest := func(setup func(*http.Request)) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/presaleMint", nil)
		req.RemoteAddr = "10.0.0.1:4321"
		setup(req)
		return req
	}

	_, err := l.Middleware()(xcontext.WithHTTPRequest(ctx, newRequest(func(*http.Request) {})))
	require.NoError(t, err)

	_, err = l.Middleware()(xcontext.WithHTTPRequest(ctx, newRequest(func(*http.Request) {})))
	require.True(t, errorx.Is(err, errorx.TooManyRequests))

	// The first forwarded address is the client.
	forwarded := func(r *http.Request) { r.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.1") }
	_, err = l.Middleware()(xcontext.WithHTTPRequest(ctx, newRequest(forwarded)))
	require.NoError(t, err)
	_, err = l.Middleware()(xcontext.WithHTTPRequest(ctx, newRequest(forwarded)))
	require.True(t, errorx.Is(err, errorx.TooManyRequests))

	realIP := func(r *http.Request) { r.Header.Set("X-Real-IP", "10.0.0.3") }
	_, err = l.Middleware()(xcontext.WithHTTPRequest(ctx, newRequest(realIP)))
	require.NoError(t, err)
}
