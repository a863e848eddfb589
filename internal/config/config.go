package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Значения по умолчанию
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "warn"
)

// Config содержит настройки клиента
type Config struct {
	APIURL         string
	StoragePath    string
	RedisAddr      string
	DatabaseDSN    string
	RequestTimeout time.Duration
	RateLimit      float64
	LogLevel       string
	OpenBrowser    bool
	Demo           bool
}

// DefaultStoragePath возвращает путь к файлу хранилища в домашней директории
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".shorty", "storage.json")
	}
	return filepath.Join(home, ".shorty", "storage.json")
}

// NewConfig создает и возвращает новый объект Config с настройками по умолчанию
func NewConfig() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		StoragePath:    DefaultStoragePath(),
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// RegisterFlags регистрирует флаги командной строки, значения по умолчанию берутся из cfg
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.APIURL, "api", "b", c.APIURL, "base URL of the shortener API")
	fs.StringVarP(&c.StoragePath, "storage", "f", c.StoragePath, "path to file for storing the session, \"memory\" keeps it in memory")
	fs.StringVarP(&c.RedisAddr, "redis", "r", c.RedisAddr, "Redis address for storing the session")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "PostgreSQL DSN for storing the session")
	fs.DurationVarP(&c.RequestTimeout, "timeout", "t", c.RequestTimeout, "timeout for a single API request")
	fs.Float64VarP(&c.RateLimit, "rate-limit", "l", c.RateLimit, "max API requests per second, 0 disables the limit")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&c.OpenBrowser, "open", c.OpenBrowser, "open resolved links in the system browser")
	fs.BoolVar(&c.Demo, "demo", c.Demo, "run against an in-process demo backend")
}

// Load применяет переменные окружения поверх флагов и нормализует значения
func (c *Config) Load() error {
	// Проверяем переменные окружения
	if url := os.Getenv("API_URL"); url != "" {
		c.APIURL = url
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		c.StoragePath = path
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.RedisAddr = addr
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.DatabaseDSN = dsn
	}
	if timeout := os.Getenv("REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return err
		}
		c.RequestTimeout = d
	}
	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		v, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return err
		}
		c.RateLimit = v
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if open := os.Getenv("OPEN_BROWSER"); open != "" {
		v, err := strconv.ParseBool(open)
		if err != nil {
			return err
		}
		c.OpenBrowser = v
	}

	// Валидация значений
	c.APIURL = NormalizeAPIURL(c.APIURL)
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if !c.Demo && c.StoragePath != "" && c.RedisAddr == "" && c.DatabaseDSN == "" {
		// Создаём директорию для файла, если она не существует
		if err := os.MkdirAll(filepath.Dir(c.StoragePath), 0700); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeAPIURL добавляет схему и убирает завершающий слэш
func NormalizeAPIURL(url string) string {
	if url == "" {
		url = DefaultAPIURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return strings.TrimRight(url, "/")
}
