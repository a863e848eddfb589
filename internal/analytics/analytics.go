// Package analytics управляет переходом между списком ссылок и аналитикой по одной ссылке.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tempizhere/shortyclient/internal/models"
	"github.com/tempizhere/shortyclient/internal/notify"
	"go.uber.org/zap"
)

var (
	ErrEmptyCode        = errors.New("empty short code")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSuperseded       = errors.New("analytics view closed before response")
)

// Сообщения пользователю
const (
	MsgLoginFirst = "Please login first"
	MsgLoadFailed = "Could not load analytics"
)

// Mode определяет активный экран
type Mode int

const (
	ListView Mode = iota
	AnalyticsView
)

func (m Mode) String() string {
	if m == AnalyticsView {
		return "analytics"
	}
	return "list"
}

// View описывает состояние экрана. Code и Records заполнены только в AnalyticsView.
type View struct {
	Mode    Mode
	Code    string
	Records []models.AnalyticsRecord
	Loading bool
	Err     error
}

// Backend загружает записи о переходах
type Backend interface {
	Analytics(ctx context.Context, token, code string) ([]models.AnalyticsRecord, error)
}

// TokenSource возвращает текущий токен
type TokenSource interface {
	Token() string
}

// Controller переключает экраны и загружает аналитику.
// Каждое открытие получает номер поколения; ответ применяется, только если поколение не сменилось.
type Controller struct {
	mu         sync.Mutex
	view       View
	generation uint64
	cancel     context.CancelFunc

	backend  Backend
	tokens   TokenSource
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewController создаёт контроллер в режиме списка
func NewController(backend Backend, tokens TokenSource, notifier notify.Notifier, logger *zap.Logger) *Controller {
	return &Controller{
		view:     View{Mode: ListView},
		backend:  backend,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Open переключает экран на аналитику кода и загружает записи.
// Каждый вызов выполняет новый запрос.
func (c *Controller) Open(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	token := c.tokens.Token()
	if token == "" {
		c.notifier.Alert(MsgLoginFirst)
		return ErrNotAuthenticated
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.view = View{Mode: AnalyticsView, Code: code, Loading: true}
	c.mu.Unlock()

	records, err := c.backend.Analytics(fetchCtx, token, code)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("Dropping analytics for closed view", zap.String("code", code))
		return ErrSuperseded
	}
	c.cancel = nil
	c.view.Loading = false
	if err != nil {
		c.view.Err = err
		c.mu.Unlock()
		c.logger.Warn("Failed to load analytics", zap.String("code", code), zap.Error(err))
		c.notifier.Alert(MsgLoadFailed)
		return fmt.Errorf("load analytics: %w", err)
	}
	c.view.Records = append([]models.AnalyticsRecord(nil), records...)
	c.mu.Unlock()
	return nil
}

// Back возвращает экран списка, отменяет загрузку и отбрасывает записи
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.view = View{Mode: ListView}
}

// View возвращает копию состояния экрана
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	if v.Records != nil {
		v.Records = append([]models.AnalyticsRecord(nil), v.Records...)
	}
	return v
}

// Count хранит число переходов для значения признака
type Count struct {
	Value string
	Count int
}

// Summary содержит итоги по загруженным записям
type Summary struct {
	Total     int
	ByCountry []Count
	ByDevice  []Count
	ByBrowser []Count
}

// Summary подсчитывает переходы по стране, устройству и браузеру
func (c *Controller) Summary() Summary {
	records := c.View().Records
	return Summary{
		Total:     len(records),
		ByCountry: countBy(records, func(r models.AnalyticsRecord) string { return r.Country }),
		ByDevice:  countBy(records, func(r models.AnalyticsRecord) string { return r.Device }),
		ByBrowser: countBy(records, func(r models.AnalyticsRecord) string { return r.Browser }),
	}
}

// countBy группирует записи; результат отсортирован по убыванию числа, затем по значению
func countBy(records []models.AnalyticsRecord, key func(models.AnalyticsRecord) string) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		v := key(r)
		if v == "" {
			v = "Unknown"
		}
		counts[v]++
	}
	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
