package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader задаёт заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware проставляет X-Request-ID, если он ещё не задан
func RequestIDMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			// RoundTripper не должен менять исходный запрос
			r := req.Clone(req.Context())
			r.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}
