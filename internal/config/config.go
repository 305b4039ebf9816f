package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Драйверы хранилища отчетов
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	HTTPPort     string   `env:"PORT" envDefault:"4000"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes int64    `env:"MAX_BODY_BYTES" envDefault:"10485760"`
	CORSOrigins  []string `env:"CORS_ORIGINS"`

	// AI Config
	GoogleAPIKey   string        `env:"GOOGLE_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL  string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	AnalyzeTimeout time.Duration `env:"ANALYZE_TIMEOUT" envDefault:"15s"`

	// Storage Config
	StorageDriver     string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DatabaseURL       string `env:"DATABASE_URL"`
	MigrationsPath    string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	SeedRandomReports int    `env:"SEED_RANDOM_REPORTS" envDefault:"0"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// MinIO Config
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Digest Config
	DigestSchedule string `env:"DIGEST_SCHEDULE" envDefault:"@daily"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		HTTPPort:          getEnv("PORT", "4000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MaxBodyBytes:      int64(getEnvAsInt("MAX_BODY_BYTES", 10<<20)),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AnalyzeTimeout:    getEnvAsDuration("ANALYZE_TIMEOUT", 15*time.Second),
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "file://migrations"),
		SeedRandomReports: getEnvAsInt("SEED_RANDOM_REPORTS", 0),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:       getEnv("MINIO_BUCKET", "images"),
		MinioUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		DigestSchedule:    getEnv("DIGEST_SCHEDULE", "@daily"),
	}

	// Загрузка разрешенных CORS-источников
	cfg.CORSOrigins = getEnvAsList("CORS_ORIGINS")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек хранилища
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR environment variable is required for storage driver %q", c.StorageDriver)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.AnalyzeTimeout <= 0 {
		return fmt.Errorf("ANALYZE_TIMEOUT must be positive, got %s", c.AnalyzeTimeout)
	}
	if c.WebhookMaxRetries < 1 {
		c.WebhookMaxRetries = 1
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список значений, разделенных запятыми
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
