package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS client_storage (
		key VARCHAR(64) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

// OpenPostgres открывает подключение через драйвер pgx и создаёт таблицу хранилища
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, createTableQuery); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// PostgresStore реализует интерфейс Store с использованием PostgreSQL
type PostgresStore struct {
	db     Database
	logger *zap.Logger
}

// NewPostgresStore создаёт новый экземпляр PostgresStore
func NewPostgresStore(db Database, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// Get возвращает значение по ключу, если оно существует
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM client_storage WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("Failed to get key from database", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return value, true, nil
}

// Set сохраняет значение, обновляя существующую запись
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO client_storage (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP",
		key, value)
	if err != nil {
		s.logger.Error("Failed to save key to database", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete удаляет ключи одним запросом
func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]interface{}, len(keys))
	placeholders := ""
	for i, key := range keys {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		args[i] = key
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM client_storage WHERE key IN ("+placeholders+")", args...); err != nil {
		s.logger.Error("Failed to delete keys from database", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}

// Close закрывает соединение с базой данных
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
