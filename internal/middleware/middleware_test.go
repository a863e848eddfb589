package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}

	rt := Chain(&stubTransport{status: http.StatusOK}, mark("outer"), mark("inner"))
	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/", nil))

	assert.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRequestIDMiddleware(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := RequestIDMiddleware()(stub)

	req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil)
	_, err := rt.RoundTrip(req)
	assert.NoError(t, err)
	assert.Len(t, stub.requests[0].Header.Get(RequestIDHeader), 36)
	assert.Empty(t, req.Header.Get(RequestIDHeader), "Original request must not be modified")

	req.Header.Set(RequestIDHeader, "fixed")
	_, err = rt.RoundTrip(req)
	assert.NoError(t, err)
	assert.Equal(t, "fixed", stub.requests[1].Header.Get(RequestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := RateLimitMiddleware(1, 1)(stub)

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/", nil))
	assert.NoError(t, err, "First request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil).WithContext(ctx)
	_, err = rt.RoundTrip(req)
	assert.Error(t, err, "Second request cannot get a slot before its deadline")
	assert.Len(t, stub.requests, 1)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := RateLimitMiddleware(0, 0)(stub)
	assert.Same(t, http.RoundTripper(stub), rt)
}

// BenchmarkLoggingMiddleware измеряет производительность цепочки middleware
func BenchmarkLoggingMiddleware(b *testing.B) {
	rt := Chain(&stubTransport{status: http.StatusOK}, RequestIDMiddleware(), LoggingMiddleware(zap.NewNop()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "http://api.test/", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			b.Fatal(err)
		}
	}
}
