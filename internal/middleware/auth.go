package middleware

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// SetBearer добавляет токен в заголовок Authorization
func SetBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", bearerPrefix+token)
}

// GetBearer извлекает токен из заголовка Authorization
func GetBearer(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	return token, token != ""
}

// UnauthorizedMiddleware вызывает onUnauthorized, когда сервер отвечает 401
// на запрос с токеном. В обработчик передаётся токен, с которым был отправлен запрос,
// чтобы ответ на запрос со старым токеном не сбросил новую сессию.
func UnauthorizedMiddleware(onUnauthorized func(req *http.Request, token string)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode == http.StatusUnauthorized {
				if token, ok := GetBearer(req); ok {
					onUnauthorized(req, token)
				}
			}
			return resp, nil
		})
	}
}
