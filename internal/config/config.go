package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Push providers
const (
	PushProviderNone    = "none"
	PushProviderFCM     = "fcm"
	PushProviderWebhook = "webhook"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Основной пул (pgx) и политика повторов
	DBMaxConns       int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBHealthInterval time.Duration `env:"DB_HEALTH_INTERVAL" envDefault:"30s"`
	DBRetryAttempts  int           `env:"DB_RETRY_ATTEMPTS" envDefault:"2"`
	DBRetryBackoff   time.Duration `env:"DB_RETRY_BACKOFF" envDefault:"100ms"`
	DBOpTimeout      time.Duration `env:"DB_OP_TIMEOUT" envDefault:"5s"`

	// Отдельный пул для прямых запросов (аутентификация, чтение)
	DirectDatabaseURL    string `env:"DIRECT_DATABASE_URL"`
	DirectDBMaxOpenConns int    `env:"DIRECT_DB_MAX_OPEN_CONNS" envDefault:"5"`
	DirectDBMaxIdleConns int    `env:"DIRECT_DB_MAX_IDLE_CONNS" envDefault:"2"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	EffectTimeout  time.Duration `env:"EFFECT_TIMEOUT" envDefault:"5s"`

	// Redis Config
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass       string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RealtimeChannel string `env:"REALTIME_CHANNEL" envDefault:"dispatch:events"`

	// Auth Config
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Push Config
	PushProvider            string        `env:"PUSH_PROVIDER" envDefault:"none"`
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
	PushWebhookURL          string        `env:"PUSH_WEBHOOK_URL"`
	PushWebhookSecret       string        `env:"PUSH_WEBHOOK_SECRET"`
	PushWebhookTimeout      time.Duration `env:"PUSH_WEBHOOK_TIMEOUT" envDefault:"5s"`
	PushWebhookMaxRetries   int           `env:"PUSH_WEBHOOK_MAX_RETRIES" envDefault:"3"`
	PushWebhookBaseDelay    time.Duration `env:"PUSH_WEBHOOK_BASE_DELAY" envDefault:"1s"`

	MigrationsPath      string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	HistorySummaryLimit int    `env:"HISTORY_SUMMARY_LIMIT" envDefault:"50"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DBMaxConns:              getEnvAsInt("DB_MAX_CONNS", 10),
		DBHealthInterval:        getEnvAsDuration("DB_HEALTH_INTERVAL", 30*time.Second),
		DBRetryAttempts:         getEnvAsInt("DB_RETRY_ATTEMPTS", 2),
		DBRetryBackoff:          getEnvAsDuration("DB_RETRY_BACKOFF", 100*time.Millisecond),
		DBOpTimeout:             getEnvAsDuration("DB_OP_TIMEOUT", 5*time.Second),
		DirectDatabaseURL:       os.Getenv("DIRECT_DATABASE_URL"),
		DirectDBMaxOpenConns:    getEnvAsInt("DIRECT_DB_MAX_OPEN_CONNS", 5),
		DirectDBMaxIdleConns:    getEnvAsInt("DIRECT_DB_MAX_IDLE_CONNS", 2),
		RequestTimeout:          getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		EffectTimeout:           getEnvAsDuration("EFFECT_TIMEOUT", 5*time.Second),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvAsInt("REDIS_DB", 0),
		RealtimeChannel:         getEnv("REALTIME_CHANNEL", "dispatch:events"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		JWTTTL:                  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		PushProvider:            getEnv("PUSH_PROVIDER", PushProviderNone),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		PushWebhookURL:          os.Getenv("PUSH_WEBHOOK_URL"),
		PushWebhookSecret:       os.Getenv("PUSH_WEBHOOK_SECRET"),
		PushWebhookTimeout:      getEnvAsDuration("PUSH_WEBHOOK_TIMEOUT", 5*time.Second),
		PushWebhookMaxRetries:   getEnvAsInt("PUSH_WEBHOOK_MAX_RETRIES", 3),
		PushWebhookBaseDelay:    getEnvAsDuration("PUSH_WEBHOOK_BASE_DELAY", time.Second),
		MigrationsPath:          getEnv("MIGRATIONS_PATH", "file://migrations"),
		HistorySummaryLimit:     getEnvAsInt("HISTORY_SUMMARY_LIMIT", 50),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.DirectDatabaseURL == "" {
		cfg.DirectDatabaseURL = cfg.DatabaseURL
	}
	if cfg.DBRetryAttempts < 1 {
		cfg.DBRetryAttempts = 1
	}

	switch cfg.PushProvider {
	case PushProviderNone, PushProviderFCM, PushProviderWebhook:
	default:
		return nil, fmt.Errorf("unknown PUSH_PROVIDER %q", cfg.PushProvider)
	}

	return cfg, nil
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

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
