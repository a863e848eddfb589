package storage

import (
	"context"
	"sync"
)

// MemoryStore реализует интерфейс Store с использованием map
type MemoryStore struct {
	mu     sync.RWMutex
	store  map[string]string
	closed bool
}

// NewMemoryStore создаёт новый экземпляр MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]string),
	}
}

// Get возвращает значение по ключу, если оно существует
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}
	value, exists := s.store[key]
	return value, exists, nil
}

// Set сохраняет значение по ключу
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.store[key] = value
	return nil
}

// Delete удаляет ключи из хранилища
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, key := range keys {
		delete(s.store, key)
	}
	return nil
}

// Close помечает хранилище закрытым
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
