package server

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func reqFromIP(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/day-1", nil)
	r.RemoteAddr = ip + ":12345"
	return r
}

// rateLimitWrap creates a rate-limited handler whose sweeper stops when
// the test finishes.
func rateLimitWrap(t *testing.T, rps float64, burst, maxIPs int, next http.Handler) http.Handler {
	t.Helper()
	mw, _ := RateLimit(t.Context(), discardLogger(), rps, burst, maxIPs)
	return mw(next)
}

func serveFrom(h http.Handler, ip string) int {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, reqFromIP(ip))
	return w.Code
}

// ---------------------------------------------------------------------------
// TestRateLimit - token buckets and LRU tracking
// ---------------------------------------------------------------------------

func TestRateLimit_PerIP(t *testing.T) {
	t.Parallel()

	wrapped := rateLimitWrap(t, 0.001, 1, 10, okHandler())

	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(wrapped, "1.1.1.1"))
	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "2.2.2.2"), "other clients keep their own bucket")
}

func TestRateLimit_LRUEviction(t *testing.T) {
	t.Parallel()

	wrapped := rateLimitWrap(t, 100, 100, 3, okHandler())

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4"} {
		assert.Equal(t, http.StatusOK, serveFrom(wrapped, ip), "IP %s", ip)
	}
}

func TestRateLimit_EvictedIPGetsFreshLimiter(t *testing.T) {
	t.Parallel()

	// burst=1 so the first request consumes the token
	wrapped := rateLimitWrap(t, 0.001, 1, 2, okHandler())

	require.Equal(t, http.StatusOK, serveFrom(wrapped, "1.1.1.1"))
	require.Equal(t, http.StatusTooManyRequests, serveFrom(wrapped, "1.1.1.1"))

	// Push 1.1.1.1 out by filling capacity with 2 other IPs
	require.Equal(t, http.StatusOK, serveFrom(wrapped, "2.2.2.2"))
	require.Equal(t, http.StatusOK, serveFrom(wrapped, "3.3.3.3"))

	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "1.1.1.1"), "evicted IP must get a fresh limiter")
}

func TestRateLimit_MRUNotEvicted(t *testing.T) {
	t.Parallel()

	wrapped := rateLimitWrap(t, 0.001, 2, 3, okHandler())

	// Fill: A, B, C (order: C=front, B, A=back)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.Equal(t, http.StatusOK, serveFrom(wrapped, ip))
	}

	// Touch A, which spends its last token and moves it to the front
	require.Equal(t, http.StatusOK, serveFrom(wrapped, "10.0.0.1"))

	// New IP D evicts B, not A
	require.Equal(t, http.StatusOK, serveFrom(wrapped, "10.0.0.4"))

	// A kept its exhausted bucket
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(wrapped, "10.0.0.1"))
}

func TestRateLimit_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	wrapped := rateLimitWrap(t, 1000, 1000, 100, okHandler())

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
			for range 10 {
				if code := serveFrom(wrapped, ip); code != http.StatusOK && code != http.StatusTooManyRequests {
					t.Errorf("IP %s: unexpected status %d", ip, code)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRateLimit_SweeperStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	_, done := RateLimit(ctx, discardLogger(), 1, 1, 0)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper goroutine did not exit after cancel")
	}
}

// ---------------------------------------------------------------------------
// TestClientIP - proxy header trust
// ---------------------------------------------------------------------------

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct peer", "203.0.113.7:5000", nil, "203.0.113.7"},
		{"public peer forwarded header ignored", "203.0.113.7:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7"},
		{"loopback proxy forwarded for", "127.0.0.1:5000", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "1.2.3.4"},
		{"private proxy real ip", "10.1.2.3:5000", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "5.6.7.8"},
		{"ipv6 peer", "[2001:db8::1]:5000", nil, "2001:db8::1"},
		{"no port", "198.51.100.2", nil, "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}

// ---------------------------------------------------------------------------
// TestLogging - request log lines
// ---------------------------------------------------------------------------

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[HTTP] GET /missing 404 "), "got %q", line)
}

func TestLogging_ImplicitOK(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Logging(log.New(&buf, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hi"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "[HTTP] GET / 200 ")
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}
