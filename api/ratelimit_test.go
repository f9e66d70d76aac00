package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koopa0/canvas/internal/log"
)

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	// 1 token/sec, burst of 3: exactly 3 immediate requests pass.
	rl := newRateLimiter(1, 3)

	for i := range 3 {
		assert.True(t, rl.allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, rl.allow("10.0.0.1"), "burst exhausted")
}

func TestRateLimiter_IsolatesIPs(t *testing.T) {
	rl := newRateLimiter(1, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	// A different IP has its own bucket.
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	rl := newRateLimiter(1, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := rateLimitMiddleware(rl, false, log.NewNop())(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xRealIP    string
		xff        string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "proxy headers ignored when not trusted",
			remoteAddr: "192.168.1.1:1234",
			xRealIP:    "203.0.113.9",
			want:       "192.168.1.1",
		},
		{
			name:       "x-real-ip preferred when trusted",
			remoteAddr: "192.168.1.1:1234",
			xRealIP:    "203.0.113.9",
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "x-forwarded-for first hop",
			remoteAddr: "192.168.1.1:1234",
			xff:        "203.0.113.9, 10.0.0.1",
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "invalid header value falls back",
			remoteAddr: "192.168.1.1:1234",
			xRealIP:    "not-an-ip",
			trustProxy: true,
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trustProxy))
		})
	}
}
