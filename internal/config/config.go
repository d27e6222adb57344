package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment    string `envconfig:"ENV" default:"development"`
	DBDSN          string `envconfig:"DB_DSN"`
	Store          string `envconfig:"STORE" default:"postgres"` // postgres | memory
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`

	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`

	RabbitURL        string `envconfig:"RABBIT_URL"`
	ReassignExchange string `envconfig:"REASSIGN_EXCHANGE" default:"scheduling.exchange"`
	ReassignWorkers  int    `envconfig:"REASSIGN_WORKERS" default:"2"`
	ReassignQueue    int    `envconfig:"REASSIGN_QUEUE_SIZE" default:"256"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	DedupeTTL     time.Duration `envconfig:"REASSIGN_DEDUPE_TTL" default:"168h"`

	Timezone           string        `envconfig:"TIMEZONE" default:"UTC"`
	CancellationWindow time.Duration `envconfig:"CANCELLATION_WINDOW" default:"30m"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	if c.CancellationWindow <= 0 {
		return fmt.Errorf("CANCELLATION_WINDOW must be positive")
	}

	return nil
}

// Location часовой пояс, в котором заданы даты и время слотов
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
