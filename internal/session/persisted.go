package session

import (
	"context"
	"encoding/json"

	"github.com/tempizhere/shortyclient/internal/models"
	"github.com/tempizhere/shortyclient/internal/storage"
	"go.uber.org/zap"
)

// Ключи, под которыми сессия хранится в постоянном хранилище
const (
	KeyToken  = "token"
	KeyUserID = "userId"
	KeyUser   = "user"
)

// Persisted хранит токен и профиль пользователя в storage.Store
type Persisted struct {
	store  storage.Store
	logger *zap.Logger
}

// NewPersisted создаёт обёртку над хранилищем
func NewPersisted(store storage.Store, logger *zap.Logger) *Persisted {
	return &Persisted{store: store, logger: logger}
}

// LoadToken возвращает сохранённый токен или пустую строку
func (p *Persisted) LoadToken(ctx context.Context) (string, error) {
	token, _, err := p.store.Get(ctx, KeyToken)
	return token, err
}

// SaveToken сохраняет токен
func (p *Persisted) SaveToken(ctx context.Context, token string) error {
	return p.store.Set(ctx, KeyToken, token)
}

// SaveUser сохраняет идентификатор и профиль пользователя. При ошибке записи
// профиля идентификатор удаляется.
func (p *Persisted) SaveUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, KeyUserID, user.ID); err != nil {
		return err
	}
	if err := p.store.Set(ctx, KeyUser, string(data)); err != nil {
		// Не оставляем userId без профиля
		if derr := p.store.Delete(ctx, KeyUserID, KeyUser); derr != nil {
			p.logger.Warn("Failed to roll back stored user id", zap.Error(derr))
		}
		return err
	}
	return nil
}

// LoadUser возвращает сохранённый профиль. Повреждённый профиль пропускается,
// при наличии только userId возвращается профиль с одним идентификатором.
func (p *Persisted) LoadUser(ctx context.Context) (*models.User, error) {
	raw, ok, err := p.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if ok {
		var user models.User
		err := json.Unmarshal([]byte(raw), &user)
		if err == nil {
			return &user, nil
		}
		p.logger.Warn("Skipping invalid stored user profile", zap.Error(err))
	}

	id, ok, err := p.store.Get(ctx, KeyUserID)
	if err != nil || !ok || id == "" {
		return nil, err
	}
	return &models.User{ID: id}, nil
}

// Clear удаляет все ключи сессии
func (p *Persisted) Clear(ctx context.Context) error {
	return p.store.Delete(ctx, KeyToken, KeyUserID, KeyUser)
}
