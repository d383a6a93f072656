package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/historyGames/internal/storage"
)

// Config содержит конфигурацию сервиса
type Config struct {
	// Настройки HTTP
	HTTPAddr         string        `envconfig:"HISTORYGAMES_HTTP_ADDR" default:":8080"`
	AllowOrigins     string        `envconfig:"HISTORYGAMES_ALLOW_ORIGINS" default:"*"`
	MaxUploadBytes   int           `envconfig:"HISTORYGAMES_MAX_UPLOAD_BYTES" default:"20971520"`
	AnalyzeRateLimit int           `envconfig:"HISTORYGAMES_ANALYZE_RATE_LIMIT" default:"10"`
	ShutdownTimeout  time.Duration `envconfig:"HISTORYGAMES_SHUTDOWN_TIMEOUT" default:"10s"`

	// Логирование
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Модель для извлечения контента
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	LLMBaseURL   string        `envconfig:"HISTORYGAMES_LLM_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	LLMModels    []string      `envconfig:"HISTORYGAMES_LLM_MODELS" default:"gemini-3-flash-preview,gemini-3-pro-preview,gemini-2.5-flash"`
	LLMTimeout   time.Duration `envconfig:"HISTORYGAMES_LLM_TIMEOUT" default:"90s"`
	MaxTextRunes int           `envconfig:"HISTORYGAMES_MAX_TEXT_RUNES" default:"15000"`

	// Хранилище истории
	StorageEngine string `envconfig:"HISTORYGAMES_STORAGE" default:"file"`
	FilePath      string `envconfig:"HISTORYGAMES_FILE_PATH" default:"data/history.json"`
	SQLitePath    string `envconfig:"HISTORYGAMES_SQLITE_PATH" default:"data/history.db"`
	RedisAddr     string `envconfig:"HISTORYGAMES_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"HISTORYGAMES_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"HISTORYGAMES_REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"HISTORYGAMES_REDIS_PREFIX" default:"historygames:"`
	PostgresDSN   string `envconfig:"HISTORYGAMES_POSTGRES_DSN"`

	// Сессии
	SessionTTL    time.Duration `envconfig:"HISTORYGAMES_SESSION_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"HISTORYGAMES_SWEEP_INTERVAL" default:"5m"`
}

// Load читает .env, переменные окружения и флаги командной строки.
// Флаги имеют наивысший приоритет.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("historygames", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to .env file")
	addr := flags.String("addr", "", "http listen address")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	engine := flags.String("storage", "", "history storage: memory, file, sqlite, redis, postgres")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFile(*envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("can not load config, %w", err)
	}

	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *engine != "" {
		cfg.StorageEngine = *engine
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can not load %s, %w", path, err)
	}
	return nil
}

// Validate проверяет значения, которые envconfig проверить не может.
func (c *Config) Validate() error {
	switch c.StorageEngine {
	case storage.EngineMemory, storage.EngineFile, storage.EngineSQLite, storage.EngineRedis:
	case storage.EnginePostgres:
		if c.PostgresDSN == "" {
			return errors.New("HISTORYGAMES_POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage engine %q", c.StorageEngine)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload size must be positive")
	}

	return nil
}

// SlogLevel переводит LogLevel в slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Storage возвращает параметры хранилища.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Engine:      c.StorageEngine,
		FilePath:    c.FilePath,
		SQLitePath:  c.SQLitePath,
		RedisAddr:   c.RedisAddr,
		RedisPass:   c.RedisPassword,
		RedisDB:     c.RedisDB,
		RedisPrefix: c.RedisPrefix,
		PostgresDSN: c.PostgresDSN,
	}
}
