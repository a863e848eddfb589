// Package app связывает сессию, список ссылок, резолвер и аналитику в одно приложение.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/tempizhere/shortyclient/internal/analytics"
	"github.com/tempizhere/shortyclient/internal/api"
	"github.com/tempizhere/shortyclient/internal/config"
	"github.com/tempizhere/shortyclient/internal/middleware"
	"github.com/tempizhere/shortyclient/internal/models"
	"github.com/tempizhere/shortyclient/internal/notify"
	"github.com/tempizhere/shortyclient/internal/resolver"
	"github.com/tempizhere/shortyclient/internal/session"
	"github.com/tempizhere/shortyclient/internal/storage"
	"github.com/tempizhere/shortyclient/internal/urls"
	"go.uber.org/zap"
)

// Screen определяет, какой экран показывать пользователю
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenLinks
)

func (s Screen) String() string {
	if s == ScreenLinks {
		return "links"
	}
	return "auth"
}

// App содержит компоненты клиента и их общий контекст
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	notifier notify.Notifier

	client    *api.Client
	session   *session.Manager
	urls      *urls.Synchronizer
	resolver  *resolver.Resolver
	analytics *analytics.Controller

	bootOnce  sync.Once
	bootErr   error
	closeOnce sync.Once
}

// New создаёт приложение. Ответ 401 на запрос с текущим токеном сбрасывает сессию.
func New(cfg *config.Config, logger *zap.Logger, store storage.Store, notifier notify.Notifier, opener resolver.Opener) *App {
	return NewWithTransport(cfg, logger, store, notifier, opener, nil)
}

// NewWithTransport создаёт приложение поверх заданного транспорта; nil означает транспорт по умолчанию
func NewWithTransport(cfg *config.Config, logger *zap.Logger, store storage.Store, notifier notify.Notifier, opener resolver.Opener, base http.RoundTripper) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		store:    store,
		notifier: notifier,
	}

	transport := middleware.Chain(base,
		middleware.UnauthorizedMiddleware(a.onUnauthorized),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(logger),
		middleware.RateLimitMiddleware(cfg.RateLimit, 1),
	)
	a.client = api.NewClient(cfg.APIURL, transport, cfg.RequestTimeout, logger)
	a.session = session.NewManager(session.NewPersisted(store, logger), a.client, notifier, logger)
	a.urls = urls.NewSynchronizer(a.client, a.session, notifier, logger)
	a.resolver = resolver.New(a.client, a.session, opener, notifier, logger)
	a.analytics = analytics.NewController(a.client, a.session, notifier, logger)

	a.session.Subscribe(a.onSessionEvent)
	return a
}

func (a *App) onUnauthorized(req *http.Request, token string) {
	if a.session.InvalidateToken(a.ctx, token) {
		a.logger.Info("Session invalidated by server", zap.String("uri", req.URL.RequestURI()))
	}
}

func (a *App) onSessionEvent(e session.Event) {
	switch e {
	case session.EventLogin:
		if err := a.urls.Refresh(a.ctx); err != nil {
			a.logger.Debug("Refresh after login failed", zap.Error(err))
		}
	case session.EventLogout, session.EventExpired:
		a.urls.Reset()
		a.analytics.Back()
	}
}

// scope ограничивает контекст операции временем жизни приложения
func (a *App) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.ctx, cancel)
	if a.ctx.Err() != nil {
		cancel()
	}
	return ctx, func() {
		stop()
		cancel()
	}
}

// Boot загружает сохранённую сессию и, если пользователь авторизован, обновляет список.
// Повторные вызовы возвращают результат первого.
func (a *App) Boot(ctx context.Context) error {
	a.bootOnce.Do(func() {
		ctx, cancel := a.scope(ctx)
		defer cancel()

		if err := a.session.Hydrate(ctx); err != nil {
			a.bootErr = err
			return
		}
		if a.session.IsAuthenticated() {
			if err := a.urls.Refresh(ctx); err != nil {
				a.logger.Debug("Initial refresh failed", zap.Error(err))
			}
		}
	})
	return a.bootErr
}

// Screen возвращает экран авторизации без токена и экран ссылок с токеном
func (a *App) Screen() Screen {
	if a.session.IsAuthenticated() {
		return ScreenLinks
	}
	return ScreenAuth
}

// Session возвращает снимок текущей сессии
func (a *App) Session() models.Session {
	return a.session.Snapshot()
}

// Login выполняет вход; после успеха список обновляется
func (a *App) Login(ctx context.Context, email, password string) error {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.session.Login(ctx, email, password)
}

// Register создаёт пользователя
func (a *App) Register(ctx context.Context, name, email, password string) (models.User, error) {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.session.Register(ctx, name, email, password)
}

// Logout завершает сессию
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.session.Logout(ctx)
}

// Refresh обновляет список ссылок
func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.urls.Refresh(ctx)
}

// URLs возвращает копию списка ссылок
func (a *App) URLs() []models.ShortURL {
	return a.urls.Snapshot()
}

// Create сокращает ссылку
func (a *App) Create(ctx context.Context, originalURL string) (models.ShortURL, error) {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.urls.Create(ctx, originalURL)
}

// ShareURL возвращает публичную короткую ссылку
func (a *App) ShareURL(code string) string {
	return a.urls.ShareURL(code)
}

// Check определяет адрес назначения и открывает его
func (a *App) Check(ctx context.Context, code string) (string, error) {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.resolver.Open(ctx, code)
}

// OpenAnalytics переключает экран на аналитику кода
func (a *App) OpenAnalytics(ctx context.Context, code string) error {
	ctx, cancel := a.scope(ctx)
	defer cancel()
	return a.analytics.Open(ctx, code)
}

// Back возвращает экран списка
func (a *App) Back() {
	a.analytics.Back()
}

// View возвращает состояние экрана аналитики
func (a *App) View() analytics.View {
	return a.analytics.View()
}

// Summary возвращает итоги по загруженной аналитике
func (a *App) Summary() analytics.Summary {
	return a.analytics.Summary()
}

// Close отменяет незавершённые запросы, отбрасывает их результаты и закрывает хранилище
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.cancel()
		a.urls.Reset()
		a.analytics.Back()
		err = a.store.Close()
	})
	return err
}
