// Package urls синхронизирует локальный список коротких ссылок с сервером.
package urls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tempizhere/shortyclient/internal/models"
	"github.com/tempizhere/shortyclient/internal/notify"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyURL         = errors.New("empty url")
)

// Сообщения пользователю
const (
	MsgLoginFirst    = "Please login first"
	MsgEnterURL      = "Please enter a URL"
	MsgCreateFailed  = "Something went wrong"
	MsgRefreshFailed = "Could not refresh your links"
)

// Backend описывает запросы к серверу, нужные синхронизатору
type Backend interface {
	AllURLs(ctx context.Context, token string) ([]models.ShortURL, error)
	CreateShortURL(ctx context.Context, token, originalURL string) (models.ShortURL, error)
	ShareURL(code string) string
}

// TokenSource возвращает текущий токен; пустая строка означает отсутствие сессии
type TokenSource interface {
	Token() string
}

// Synchronizer хранит список ссылок пользователя.
// Каждое обновление и каждое локальное добавление получают номер из общей
// последовательности; ответ сервера применяется, только если его номер новее
// последнего применённого.
type Synchronizer struct {
	mu      sync.Mutex
	urls    []models.ShortURL
	seq     uint64
	applied uint64
	resetAt uint64

	backend  Backend
	tokens   TokenSource
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewSynchronizer создаёт синхронизатор с пустым списком
func NewSynchronizer(backend Backend, tokens TokenSource, notifier notify.Notifier, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		backend:  backend,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Refresh заменяет список ответом сервера целиком. Без токена ничего не делает.
// При ошибке список не меняется.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		return nil
	}
	ticket := s.nextTicket()

	list, err := s.backend.AllURLs(ctx, token)
	if err != nil {
		if s.isCurrent(ticket) && ctx.Err() == nil {
			s.logger.Warn("Failed to refresh urls", zap.Error(err))
			s.notifier.Notice(MsgRefreshFailed)
		}
		return fmt.Errorf("refresh urls: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.applied {
		s.logger.Debug("Dropping stale urls response", zap.Uint64("ticket", ticket), zap.Uint64("applied", s.applied))
		return nil
	}
	s.urls = append([]models.ShortURL(nil), list...)
	s.applied = ticket
	return nil
}

// Create создаёт короткую ссылку, добавляет её в список и затем всегда обновляет список с сервера
func (s *Synchronizer) Create(ctx context.Context, originalURL string) (models.ShortURL, error) {
	token := s.tokens.Token()
	if token == "" {
		s.notifier.Alert(MsgLoginFirst)
		return models.ShortURL{}, ErrNotAuthenticated
	}
	originalURL = strings.TrimSpace(originalURL)
	if originalURL == "" {
		s.notifier.Alert(MsgEnterURL)
		return models.ShortURL{}, ErrEmptyURL
	}

	ticket := s.nextTicket()
	created, err := s.backend.CreateShortURL(ctx, token, originalURL)
	if err != nil {
		s.logger.Warn("Failed to create short url", zap.String("url", originalURL), zap.Error(err))
		s.notifier.Alert(MsgCreateFailed)
		return models.ShortURL{}, fmt.Errorf("create short url: %w", err)
	}

	s.mu.Lock()
	if ticket < s.resetAt {
		// Список уже сброшен, ссылка принадлежит прошлой сессии
		s.mu.Unlock()
		s.logger.Debug("Dropping short url created before reset", zap.String("code", created.ShortCode))
		return created, nil
	}
	s.seq++
	s.applied = s.seq
	s.urls = append(s.clone(), created)
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Debug("Refresh after create failed", zap.Error(err))
	}
	return created, nil
}

// Snapshot возвращает копию списка
func (s *Synchronizer) Snapshot() []models.ShortURL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone()
}

// Reset очищает список; ответы на запросы, начатые до сброса, отбрасываются
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.applied = s.seq
	s.resetAt = s.seq
	s.urls = nil
}

// ShareURL возвращает публичную ссылку для кода
func (s *Synchronizer) ShareURL(code string) string {
	return s.backend.ShareURL(code)
}

func (s *Synchronizer) nextTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Synchronizer) isCurrent(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ticket > s.applied
}

// clone копирует список; вызывается под мьютексом
func (s *Synchronizer) clone() []models.ShortURL {
	out := make([]models.ShortURL, len(s.urls))
	copy(out, s.urls)
	return out
}
