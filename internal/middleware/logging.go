package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware создаёт middleware для логирования запросов и ответов
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(req)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.URL.Path),
				zap.String("request_id", req.Header.Get(RequestIDHeader)),
				zap.Duration("duration", duration),
			}
			if err != nil {
				logger.Warn("HTTP request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("HTTP request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
