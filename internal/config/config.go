package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string
	LogLevel    string

	Storage StorageConfig
	HTTP    HTTPConfig
	JWT     JWTConfig

	SlotDuration time.Duration
	SlotMaxRange time.Duration // самый длинный диапазон POST /availability

	Geocoder GeocoderConfig

	TelegramToken string // пусто - бот не запускается
}

type StorageConfig struct {
	Backend       string
	DBDSN         string
	RunMigrations bool
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Secret string
}

type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment: getString("ENV", "development"),
		LogLevel:    getString("LOG_LEVEL", "info"),
		Storage: StorageConfig{
			Backend:       strings.ToLower(getString("STORAGE_BACKEND", StoragePostgres)),
			DBDSN:         os.Getenv("DB_DSN"),
			RunMigrations: getBool("RUN_MIGRATIONS", true),
		},
		HTTP: HTTPConfig{
			Addr:            getString("HTTP_ADDR", ":8080"),
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		SlotDuration: time.Duration(getInt("SLOT_DURATION_MINUTES", 15)) * time.Minute,
		SlotMaxRange: getDuration("SLOT_MAX_RANGE", 28*24*time.Hour),
		Geocoder: GeocoderConfig{
			URL:       getString("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
			UserAgent: getString("GEOCODER_USER_AGENT", "tutor-market/1.0"),
			Timeout:   getDuration("GEOCODER_TIMEOUT", 5*time.Second),
		},
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StoragePostgres:
		if c.Storage.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}

	if c.SlotDuration <= 0 {
		return fmt.Errorf("SLOT_DURATION_MINUTES must be positive")
	}

	if c.SlotMaxRange < c.SlotDuration {
		return fmt.Errorf("SLOT_MAX_RANGE must be at least one slot long")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDuration принимает "5s" или число секунд
func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
