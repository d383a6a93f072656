package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrUnknownEngine = errors.New("unknown storage engine")
)

// Движки хранилища.
const (
	EngineMemory   = "memory"
	EngineFile     = "file"
	EngineSQLite   = "sqlite"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
)

// KV определяет интерфейс хранилища ключ-значение.
type KV interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение, перезаписывая старое.
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ. Отсутствующий ключ не является ошибкой.
	Delete(ctx context.Context, key string) error

	// Close освобождает ресурсы.
	Close() error
}

// Config описывает выбранный движок и его параметры.
type Config struct {
	Engine      string
	FilePath    string
	SQLitePath  string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string
	PostgresDSN string
}

// NewByEngine создаёт хранилище по имени движка.
func NewByEngine(ctx context.Context, cfg Config) (KV, error) {
	switch cfg.Engine {
	case EngineMemory, "":
		return NewMemoryStorage(), nil
	case EngineFile:
		return NewFileStorage(cfg.FilePath)
	case EngineSQLite:
		return NewSQLiteStorage(ctx, cfg.SQLitePath)
	case EngineRedis:
		return NewRedisStorage(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case EnginePostgres:
		return NewPostgresStorage(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
