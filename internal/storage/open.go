package storage

import (
	"context"

	"github.com/tempizhere/shortyclient/internal/config"
	"go.uber.org/zap"
)

// MemoryPath задаёт значение пути, при котором сессия хранится только в памяти
const MemoryPath = "memory"

// Open выбирает хранилище по конфигурации: PostgreSQL, затем Redis, затем файл, иначе память
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch {
	case cfg.DatabaseDSN != "":
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using PostgreSQL session storage")
		return NewPostgresStore(db, logger), nil
	case cfg.RedisAddr != "":
		s, err := NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using Redis session storage", zap.String("addr", cfg.RedisAddr))
		return s, nil
	case cfg.StoragePath != "" && cfg.StoragePath != MemoryPath:
		logger.Debug("Using file session storage", zap.String("path", cfg.StoragePath))
		return NewFileStore(cfg.StoragePath, logger)
	default:
		logger.Debug("Using in-memory session storage")
		return NewMemoryStore(), nil
	}
}
