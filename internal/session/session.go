// Package session управляет жизненным циклом токена и профиля пользователя.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tempizhere/shortyclient/internal/models"
	"github.com/tempizhere/shortyclient/internal/notify"
	"go.uber.org/zap"
)

var (
	ErrValidation = errors.New("missing credentials")
	ErrAuthFailed = errors.New("authentication failed")
)

// Сообщения пользователю
const (
	MsgEnterCredentials   = "Please enter email and password"
	MsgEnterRegistration  = "Please enter name, email and password"
	MsgInvalidCredentials = "Invalid email or password"
	MsgSessionExpired     = "Session expired, please log in again"
)

// Event описывает изменение состояния авторизации
type Event int

const (
	EventLogin Event = iota + 1
	EventRegister
	EventLogout
	EventExpired
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventRegister:
		return "register"
	case EventLogout:
		return "logout"
	case EventExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Authenticator выполняет запросы авторизации к серверу
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (models.User, error)
}

// Manager хранит текущую сессию и синхронизирует её с постоянным хранилищем.
// Сетевые вызовы выполняются без удержания блокировки.
type Manager struct {
	mu        sync.RWMutex
	session   models.Session
	listeners []func(Event)

	persisted *Persisted
	auth      Authenticator
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager создаёт менеджер сессии. До вызова Hydrate сессия пуста.
func NewManager(persisted *Persisted, auth Authenticator, notifier notify.Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		persisted: persisted,
		auth:      auth,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Subscribe регистрирует обработчик событий авторизации.
// Обработчики вызываются после применения нового состояния.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Hydrate загружает сессию из хранилища без обращения к сети.
// Просроченный JWT удаляется из хранилища.
func (m *Manager) Hydrate(ctx context.Context) error {
	token, err := m.persisted.LoadToken(ctx)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token != "" && m.expired(token) {
		m.logger.Info("Stored token expired, clearing session")
		if err := m.persisted.Clear(ctx); err != nil {
			m.logger.Warn("Failed to clear expired session", zap.Error(err))
		}
		token = ""
	}

	user, err := m.persisted.LoadUser(ctx)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	m.mu.Lock()
	m.session = models.Session{Token: token, User: user}
	m.mu.Unlock()
	return nil
}

// expired сообщает, что токен является JWT с истёкшим exp.
// Непрозрачные токены считаются действительными до ответа 401.
func (m *Manager) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(m.now())
}

// Login проверяет поля, получает токен и сохраняет его до изменения состояния в памяти
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		m.notifier.Alert(MsgEnterCredentials)
		return ErrValidation
	}

	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.Info("Login failed", zap.Error(err))
		m.notifier.Alert(MsgInvalidCredentials)
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if err := m.persisted.SaveToken(ctx, token); err != nil {
		m.logger.Error("Failed to persist token", zap.Error(err))
		m.notifier.Alert(MsgInvalidCredentials)
		return fmt.Errorf("%w: persist token: %v", ErrAuthFailed, err)
	}

	m.mu.Lock()
	m.session.Token = token
	m.mu.Unlock()

	if err := m.Hydrate(ctx); err != nil {
		m.logger.Warn("Failed to hydrate after login", zap.Error(err))
	}
	m.emit(EventLogin)
	return nil
}

// Register создаёт пользователя и сохраняет профиль. Токен не выдаётся, после регистрации нужен вход.
func (m *Manager) Register(ctx context.Context, name, email, password string) (models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		m.notifier.Alert(MsgEnterRegistration)
		return models.User{}, ErrValidation
	}

	user, err := m.auth.Register(ctx, name, email, password)
	if err != nil {
		m.logger.Info("Registration failed", zap.Error(err))
		m.notifier.Alert(MsgInvalidCredentials)
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if err := m.persisted.SaveUser(ctx, user); err != nil {
		m.logger.Error("Failed to persist user", zap.Error(err))
		m.notifier.Alert(MsgInvalidCredentials)
		return models.User{}, fmt.Errorf("%w: persist user: %v", ErrAuthFailed, err)
	}

	m.mu.Lock()
	u := user
	m.session.User = &u
	m.mu.Unlock()

	m.emit(EventRegister)
	return user, nil
}

// Logout очищает хранилище и сессию; повторный вызов безопасен
func (m *Manager) Logout(ctx context.Context) error {
	err := m.reset(ctx)
	m.emit(EventLogout)
	return err
}

// Invalidate сбрасывает сессию после ответа 401
func (m *Manager) Invalidate(ctx context.Context) error {
	err := m.reset(ctx)
	m.notifier.Notice(MsgSessionExpired)
	m.emit(EventExpired)
	return err
}

// InvalidateToken сбрасывает сессию, только если token всё ещё текущий.
// Ответ 401 на запрос со старым токеном не затрагивает новую сессию.
func (m *Manager) InvalidateToken(ctx context.Context, token string) bool {
	if token == "" || m.Token() != token {
		return false
	}
	if err := m.Invalidate(ctx); err != nil {
		m.logger.Warn("Failed to clear session after 401", zap.Error(err))
	}
	return true
}

func (m *Manager) reset(ctx context.Context) error {
	err := m.persisted.Clear(ctx)
	if err != nil {
		m.logger.Warn("Failed to clear stored session", zap.Error(err))
	}
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()
	return err
}

// IsAuthenticated сообщает, есть ли токен в памяти
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// Token возвращает текущий токен
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Snapshot возвращает копию сессии
func (m *Manager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *Manager) emit(e Event) {
	m.mu.RLock()
	listeners := make([]func(Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	m.logger.Debug("Session event", zap.Stringer("event", e))
	for _, fn := range listeners {
		fn(e)
	}
}
