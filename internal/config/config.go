package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

// PasteConfig holds defaults and limits applied when pastes are created.
type PasteConfig struct {
	DefaultLexer  string
	DefaultExpiry time.Duration
	DefaultSource string
	// IDRetries is the number of extra insert attempts made after an
	// identifier collision. Zero means a single attempt.
	IDRetries    int
	MaxSize      int
	CacheSize    int
	ReapInterval time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Log      LogConfig
	Paste    PasteConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Paste: PasteConfig{
			DefaultLexer:  getEnv("PASTE_DEFAULT_LEXER", "text"),
			DefaultExpiry: getEnvDuration("PASTE_DEFAULT_EXPIRY", 7*24*time.Hour),
			DefaultSource: getEnv("PASTE_DEFAULT_SOURCE", "web"),
			IDRetries:     getEnvInt("PASTE_ID_RETRIES", 3),
			MaxSize:       getEnvInt("PASTE_MAX_SIZE", 64*1024),
			CacheSize:     getEnvInt("PASTE_CACHE_SIZE", 1024),
			ReapInterval:  getEnvDuration("PASTE_REAP_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
