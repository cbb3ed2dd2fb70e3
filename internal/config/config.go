// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	Lookup      LookupConfig
	Redis       RedisConfig
	Scanner     ScannerConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// StorageConfig selects the record store backend. Driver is one of
// "bolt", "sqlite" or "memory".
type StorageConfig struct {
	Driver string
	Path   string
}

type LookupConfig struct {
	BaseURL  string
	Timeout  int // in seconds
	CacheTTL int // in minutes
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScannerConfig struct {
	SessionTTL int // idle minutes before a scan session is reclaimed
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

type FrontendConfig struct {
	BaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "bolt"),
			Path:   getEnv("STORAGE_PATH", "./perimapp.db"),
		},
		Lookup: LookupConfig{
			BaseURL:  getEnv("LOOKUP_BASE_URL", "https://world.openfoodfacts.org"),
			Timeout:  getEnvAsInt("LOOKUP_TIMEOUT", 10),
			CacheTTL: getEnvAsInt("LOOKUP_CACHE_TTL", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Scanner: ScannerConfig{
			SessionTTL: getEnvAsInt("SCAN_SESSION_TTL", 10),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for the %s driver", c.Storage.Driver)
	}

	if !strings.HasPrefix(c.Lookup.BaseURL, "http") {
		return fmt.Errorf("lookup base URL must be an http(s) URL")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
