package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Проверяем, что MemoryStore реализует интерфейс Store
	var _ Store = (*MemoryStore)(nil)

	// Тест 1: Сохранение и получение значения
	assert.NoError(t, s.Set(ctx, "token", "abc"))
	value, exists, err := s.Get(ctx, "token")
	assert.NoError(t, err)
	assert.True(t, exists, "Value should exist")
	assert.Equal(t, "abc", value)

	// Тест 2: Перезапись значения
	assert.NoError(t, s.Set(ctx, "token", "def"))
	value, _, _ = s.Get(ctx, "token")
	assert.Equal(t, "def", value, "Value should be updated")

	// Тест 3: Получение несуществующего ключа
	_, exists, err = s.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, exists, "Value should not exist")

	// Тест 4: Удаление нескольких ключей, включая отсутствующий
	assert.NoError(t, s.Set(ctx, "user", "{}"))
	assert.NoError(t, s.Delete(ctx, "token", "user", "missing"))
	_, exists, _ = s.Get(ctx, "token")
	assert.False(t, exists, "Token should be deleted")
	_, exists, _ = s.Get(ctx, "user")
	assert.False(t, exists, "User should be deleted")

	// Тест 5: Закрытое хранилище
	assert.NoError(t, s.Close())
	_, _, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "token", "x"), ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "token"), ErrClosed)
}
