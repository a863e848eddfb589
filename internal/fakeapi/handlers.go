package fakeapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/tempizhere/shortyclient/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type userIDKey struct{}

// route считает запросы и передаёт управление перехватчику, если он задан
func (s *Server) route(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[name]++
		fn := s.intercepts[name]
		s.mu.Unlock()

		if fn != nil && fn(w, r) {
			return
		}
		next(w, r)
	}
}

// authenticated проверяет Bearer-токен и кладёт userID в контекст
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userFromRequest(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	}
}

func (s *Server) userFromRequest(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}

	s.mu.Lock()
	u, exists := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !exists || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.RegisterResponse{Message: "Invalid JSON"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.RegisterResponse{Message: "All fields are required"})
		return
	}
	u, err := s.AddUser(req.Name, req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusConflict, models.RegisterResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.RegisterResponse{Success: true, Data: u})
}

func (s *Server) handleAllURLs(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey{}).(string)
	writeJSON(w, http.StatusOK, s.URLs(userID))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey{}).(string)
	originalURL := r.URL.Query().Get("originalUrl")
	if _, err := url.ParseRequestURI(originalURL); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid URL"})
		return
	}
	writeJSON(w, http.StatusOK, s.AddURL(userID, originalURL))
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	device, browser := parseUserAgent(r.UserAgent())
	originalURL, ok := s.Click(code, models.AnalyticsRecord{
		IP:      ip,
		Country: "Unknown",
		Device:  device,
		Browser: browser,
	})
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "URL not found"})
		return
	}
	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusFound)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey{}).(string)
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	l, ok := s.links[code]
	var records []models.AnalyticsRecord
	if ok && l.owner == userID {
		records = append([]models.AnalyticsRecord{}, s.clicks[code]...)
	}
	s.mu.Unlock()

	if !ok || l.owner != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "URL not found"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// parseUserAgent грубо определяет устройство и браузер по User-Agent
func parseUserAgent(ua string) (device, browser string) {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "android"), strings.Contains(lower, "iphone"):
		device = "mobile"
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		device = "tablet"
	default:
		device = "desktop"
	}
	switch {
	case strings.Contains(lower, "edg/"):
		browser = "Edge"
	case strings.Contains(lower, "chrome/"):
		browser = "Chrome"
	case strings.Contains(lower, "firefox/"):
		browser = "Firefox"
	case strings.Contains(lower, "safari/"):
		browser = "Safari"
	default:
		browser = "Other"
	}
	return device, browser
}

// writeJSON пишет JSON-ответ с заданным статусом
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
