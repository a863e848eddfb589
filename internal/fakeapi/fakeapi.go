// Package fakeapi реализует сервер API сокращателя в памяти процесса.
// Используется в тестах и в демо-режиме клиента.
package fakeapi

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/tempizhere/shortyclient/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Имена маршрутов для счётчиков и перехватчиков
const (
	RouteLogin     = "login"
	RouteRegister  = "register"
	RouteAllURLs   = "all-urls"
	RouteCreate    = "create-short-url"
	RouteRedirect  = "redirect"
	RouteAnalytics = "analytics"
)

var ErrUserExists = errors.New("user already exists")

// InterceptFunc может обработать запрос вместо сервера; возвращает true, если ответ записан
type InterceptFunc func(w http.ResponseWriter, r *http.Request) bool

type user struct {
	models.User
	passwordHash []byte
}

type link struct {
	owner string
	url   models.ShortURL
}

// Server хранит пользователей, ссылки и переходы в памяти
type Server struct {
	mu         sync.Mutex
	secret     []byte
	tokenTTL   time.Duration
	now        func() time.Time
	users      map[string]*user
	links      map[string]*link
	order      map[string][]string
	clicks     map[string][]models.AnalyticsRecord
	requests   map[string]int
	intercepts map[string]InterceptFunc
}

// New создаёт пустой сервер со случайным ключом подписи токенов
func New() *Server {
	return &Server{
		secret:     []byte(uuid.NewString()),
		tokenTTL:   24 * time.Hour,
		now:        time.Now,
		users:      make(map[string]*user),
		links:      make(map[string]*link),
		order:      make(map[string][]string),
		clicks:     make(map[string][]models.AnalyticsRecord),
		requests:   make(map[string]int),
		intercepts: make(map[string]InterceptFunc),
	}
}

// Handler возвращает маршрутизатор chi с эндпоинтами API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/user/login", s.route(RouteLogin, s.handleLogin))
	r.Post("/api/user/register", s.route(RouteRegister, s.handleRegister))
	r.Get("/api/url/all-urls", s.route(RouteAllURLs, s.authenticated(s.handleAllURLs)))
	r.Post("/api/url/create-short-url", s.route(RouteCreate, s.authenticated(s.handleCreate)))
	r.Get("/api/url/{code}", s.route(RouteRedirect, s.handleRedirect))
	r.Get("/api/analytics/{code}", s.route(RouteAnalytics, s.authenticated(s.handleAnalytics)))
	return r
}

// Intercept подменяет обработку маршрута; nil снимает перехватчик
func (s *Server) Intercept(route string, fn InterceptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.intercepts, route)
		return
	}
	s.intercepts[route] = fn
}

// Requests возвращает число запросов к маршруту
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// SetTokenTTL задаёт срок жизни выдаваемых токенов
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

// AddUser регистрирует пользователя напрямую
func (s *Server) AddUser(name, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return models.User{}, ErrUserExists
	}
	u := &user{
		User:         models.User{ID: uuid.NewString(), Name: name, Email: email},
		passwordHash: hash,
	}
	s.users[key] = u
	return u.User, nil
}

// IssueToken выдаёт токен пользователю
func (s *Server) IssueToken(userID string) (string, error) {
	s.mu.Lock()
	ttl, now := s.tokenTTL, s.now()
	s.mu.Unlock()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// AddURL создаёт ссылку пользователя, повторный URL возвращает существующую запись
func (s *Server) AddURL(userID, originalURL string) models.ShortURL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addURLLocked(userID, originalURL)
}

// Click регистрирует переход по коду; возвращает false для неизвестного кода
func (s *Server) Click(code string, rec models.AnalyticsRecord) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[code]
	if !ok {
		return "", false
	}
	rec.ID = uuid.NewString()
	rec.ShortCode = code
	if rec.ClickedAt.IsZero() {
		rec.ClickedAt = s.now().UTC()
	}
	l.url.ClickCount++
	s.clicks[code] = append(s.clicks[code], rec)
	return l.url.OriginalURL, true
}

// URLs возвращает ссылки пользователя в порядке создания
func (s *Server) URLs(userID string) []models.ShortURL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlsLocked(userID)
}

func (s *Server) addURLLocked(userID, originalURL string) models.ShortURL {
	for _, code := range s.order[userID] {
		if s.links[code].url.OriginalURL == originalURL {
			return s.links[code].url
		}
	}
	code := s.newCodeLocked()
	l := &link{
		owner: userID,
		url: models.ShortURL{
			URLID:       uuid.NewString(),
			OriginalURL: originalURL,
			ShortCode:   code,
			CreatedAt:   s.now().UTC().Truncate(time.Second),
		},
	}
	s.links[code] = l
	s.order[userID] = append(s.order[userID], code)
	return l.url
}

func (s *Server) urlsLocked(userID string) []models.ShortURL {
	out := make([]models.ShortURL, 0, len(s.order[userID]))
	for _, code := range s.order[userID] {
		out = append(out, s.links[code].url)
	}
	return out
}

// newCodeLocked генерирует свободный код из 7 символов base64url
func (s *Server) newCodeLocked() string {
	buf := make([]byte, 8)
	for {
		_, _ = rand.Read(buf)
		code := base64.RawURLEncoding.EncodeToString(buf)[:7]
		if _, exists := s.links[code]; !exists {
			return code
		}
	}
}
