// Package resolver определяет адрес назначения короткой ссылки без перехода по ней.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tempizhere/shortyclient/internal/api"
	"github.com/tempizhere/shortyclient/internal/notify"
	"go.uber.org/zap"
)

var (
	ErrMissingInput  = errors.New("missing token or short code")
	ErrNoLocation    = errors.New("redirect without location")
	ErrResolveFailed = errors.New("failed to resolve short url")
)

// Сообщения пользователю
const (
	MsgMissingInput  = "Missing token or short code"
	MsgNoLocation    = "Redirect URL not found"
	MsgResolveFailed = "Failed to open short URL"
)

// Backend запрашивает короткий код и возвращает ответ без перехода
type Backend interface {
	LookupRedirect(ctx context.Context, token, code string) (api.Redirect, error)
}

// TokenSource возвращает текущий токен
type TokenSource interface {
	Token() string
}

// Opener открывает адрес назначения для пользователя
type Opener interface {
	Open(ctx context.Context, destination string) error
}

// Resolver превращает короткий код в адрес назначения
type Resolver struct {
	backend  Backend
	tokens   TokenSource
	opener   Opener
	notifier notify.Notifier
	logger   *zap.Logger
}

// New создаёт резолвер
func New(backend Backend, tokens TokenSource, opener Opener, notifier notify.Notifier, logger *zap.Logger) *Resolver {
	return &Resolver{
		backend:  backend,
		tokens:   tokens,
		opener:   opener,
		notifier: notifier,
		logger:   logger,
	}
}

// Resolve возвращает значение Location из ответа 301 или 302
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	token := r.tokens.Token()
	code = strings.TrimSpace(code)
	if token == "" || code == "" {
		r.notifier.Alert(MsgMissingInput)
		return "", ErrMissingInput
	}

	redirect, err := r.backend.LookupRedirect(ctx, token, code)
	if err != nil {
		r.logger.Warn("Failed to resolve short url", zap.String("code", code), zap.Error(err))
		r.notifier.Alert(MsgResolveFailed)
		return "", fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}

	switch redirect.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound:
		if redirect.Location == "" {
			r.notifier.Alert(MsgNoLocation)
			return "", ErrNoLocation
		}
		r.logger.Debug("Short url resolved", zap.String("code", code), zap.String("location", redirect.Location))
		return redirect.Location, nil
	default:
		r.logger.Warn("Unexpected status for short url", zap.String("code", code), zap.Int("status", redirect.StatusCode))
		r.notifier.Alert(MsgResolveFailed)
		return "", fmt.Errorf("%w: status %d", ErrResolveFailed, redirect.StatusCode)
	}
}

// Open определяет адрес назначения и передаёт его Opener
func (r *Resolver) Open(ctx context.Context, code string) (string, error) {
	destination, err := r.Resolve(ctx, code)
	if err != nil {
		return "", err
	}
	if err := r.opener.Open(ctx, destination); err != nil {
		return destination, fmt.Errorf("open %s: %w", destination, err)
	}
	return destination, nil
}
