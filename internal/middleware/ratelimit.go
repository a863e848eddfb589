package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware ограничивает частоту исходящих запросов.
// Запрос ждёт свободного слота, пока не истечёт его контекст.
func RateLimitMiddleware(requestsPerSecond float64, burst int) Middleware {
	if requestsPerSecond <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}
