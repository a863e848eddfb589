// Package storage содержит постоянное key-value хранилище клиента:
// в нём живут токен и профиль пользователя между запусками.
package storage

import (
	"context"
	"database/sql"
	"errors"
)

// ErrClosed возвращается при обращении к закрытому хранилищу
var ErrClosed = errors.New("storage closed")

// Store определяет интерфейс постоянного key-value хранилища
type Store interface {
	// Get возвращает значение по ключу и флаг существования
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение по ключу, перезаписывая предыдущее
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключи; отсутствующие ключи игнорируются
	Delete(ctx context.Context, keys ...string) error
	// Close освобождает ресурсы хранилища
	Close() error
}

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// PingContext проверяет соединение с базой данных
	PingContext(ctx context.Context) error
	// ExecContext выполняет SQL-команду без возврата результатов
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// QueryRowContext выполняет SQL-запрос и возвращает одну строку результата
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	// Close закрывает соединение с базой данных
	Close() error
}
