// Package api содержит типизированный клиент HTTP API сервиса сокращения ссылок.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tempizhere/shortyclient/internal/middleware"
	"github.com/tempizhere/shortyclient/internal/models"
	"go.uber.org/zap"
)

// maxBodySize ограничивает размер читаемого ответа
const maxBodySize = 4 << 20

// maxErrorBody ограничивает длину тела ответа в StatusError
const maxErrorBody = 200

// Client выполняет запросы к API сервиса
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient создаёт клиент. Переходы по редиректам отключены для всех запросов:
// ни один эндпоинт не требует следовать за Location, а резолвер читает его сам.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// BaseURL возвращает базовый адрес API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ShareURL возвращает публичную короткую ссылку для кода
func (c *Client) ShareURL(code string) string {
	return c.baseURL + "/api/url/" + url.PathEscape(code)
}

// Login обменивает email и пароль на токен
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.LoginResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/user/login", "", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrEmptyToken
	}
	return resp.Token, nil
}

// Register создаёт пользователя и возвращает его профиль
func (c *Client) Register(ctx context.Context, name, email, password string) (models.User, error) {
	var resp models.RegisterResponse
	err := c.doJSON(ctx, "register", http.MethodPost, "/api/user/register", "", models.RegisterRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return models.User{}, err
	}
	if !resp.Success {
		if resp.Message != "" {
			return models.User{}, fmt.Errorf("%w: %s", ErrRegistrationFailed, resp.Message)
		}
		return models.User{}, ErrRegistrationFailed
	}
	return resp.Data, nil
}

// AllURLs возвращает все ссылки пользователя в порядке сервера
func (c *Client) AllURLs(ctx context.Context, token string) ([]models.ShortURL, error) {
	var urls []models.ShortURL
	if err := c.doJSON(ctx, "all-urls", http.MethodGet, "/api/url/all-urls", token, nil, &urls); err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []models.ShortURL{}
	}
	return urls, nil
}

// CreateShortURL создаёт короткую ссылку; оригинальный URL передаётся query-параметром
func (c *Client) CreateShortURL(ctx context.Context, token, originalURL string) (models.ShortURL, error) {
	path := "/api/url/create-short-url?" + url.Values{"originalUrl": {originalURL}}.Encode()
	var created models.ShortURL
	if err := c.doJSON(ctx, "create-short-url", http.MethodPost, path, token, nil, &created); err != nil {
		return models.ShortURL{}, err
	}
	return created, nil
}

// Analytics возвращает записи о переходах по коду
func (c *Client) Analytics(ctx context.Context, token, code string) ([]models.AnalyticsRecord, error) {
	var records []models.AnalyticsRecord
	if err := c.doJSON(ctx, "analytics", http.MethodGet, "/api/analytics/"+url.PathEscape(code), token, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.AnalyticsRecord{}
	}
	return records, nil
}

// Redirect содержит ответ на запрос короткого кода без перехода по ссылке
type Redirect struct {
	StatusCode int
	Location   string
}

// LookupRedirect запрашивает короткий код и возвращает статус и заголовок Location как есть
func (c *Client) LookupRedirect(ctx context.Context, token, code string) (Redirect, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/url/"+url.PathEscape(code), token, nil)
	if err != nil {
		return Redirect{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Redirect{}, err
	}
	defer resp.Body.Close()
	// Дочитываем тело, чтобы соединение вернулось в пул
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	return Redirect{StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		middleware.SetBearer(req, token)
	}
	return req, nil
}

// doJSON выполняет запрос и разбирает JSON-ответ со статусом 200
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, token, in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		body := truncateBody(strings.TrimSpace(string(data)), maxErrorBody)
		return &StatusError{Op: op, Code: resp.StatusCode, Body: body}
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Debug("Failed to decode response", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

// truncateBody обрезает строку до n байт, не разрывая символ UTF-8
func truncateBody(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
