package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TablesStoreFile  = "file"
	TablesStoreRedis = "redis"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	DB      DBConfig
	HTTP    HTTPConfig
	Auth    AuthConfig
	Tables  TablesConfig
	Printer PrinterConfig
	Log     LogConfig

	ActivePollInterval time.Duration
}

type DBConfig struct {
	Driver string // "sqlite" (on-device, default) or "mysql"
	DSN    string
}

type HTTPConfig struct {
	Port       string
	GinMode    string
	CORSOrigin string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type TablesConfig struct {
	Store     string // "file" or "redis"
	File      string
	RedisAddr string
}

type PrinterConfig struct {
	SpoolDir string // empty -> tickets are only logged
	Width    int
}

type LogConfig struct {
	Level  string // logrus level name for the info logger
	Format string // "text" or "json"
}

// Load reads the environment, optionally seeded from a .env file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:    getEnv("DB_DSN", "ocna.db"),
		},
		HTTP: HTTPConfig{
			Port:       getEnv("PORT", "8080"),
			GinMode:    getEnv("GIN_MODE", ""),
			CORSOrigin: getEnv("CORS_ORIGIN", "http://127.0.0.1:8081"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "ocna-local-terminal"),
			TokenTTL:      getDuration("TOKEN_TTL", 12*time.Hour),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "123"),
		},
		Tables: TablesConfig{
			Store:     strings.ToLower(getEnv("TABLES_STORE", TablesStoreFile)),
			File:      getEnv("TABLES_FILE", "tables.json"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Printer: PrinterConfig{
			SpoolDir: getEnv("PRINT_SPOOL_DIR", ""),
			Width:    getInt("PRINT_WIDTH", 32),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		ActivePollInterval: getDuration("ACTIVE_POLL_INTERVAL", 3*time.Second),
	}, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
