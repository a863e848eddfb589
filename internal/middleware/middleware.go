// Package middleware содержит обёртки http.RoundTripper для исходящих запросов клиента.
package middleware

import "net/http"

// RoundTripperFunc позволяет использовать функцию как http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip вызывает f(req)
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware оборачивает http.RoundTripper
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain собирает цепочку: первый middleware оказывается самым внешним
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
