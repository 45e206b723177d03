package config

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSQLiteURL       = "doubles.db?_journal_mode=WAL"
	defaultPort            = 8080
	defaultSessionLifetime = 24 * time.Hour
	defaultNATSSubject     = "doubles.events"
)

type AuthConfig struct {
	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string

	GoogleKey         string
	GoogleSecret      string
	GoogleCallbackURL string
}

type Config struct {
	DBDriver    string
	DatabaseURL string
	ServerPort  int
	// Public address used for signup links and QR codes
	BaseURL  string
	LogLevel string

	// Empty NATSURL keeps realtime events in process
	NATSURL     string
	NATSSubject string
	CORSOrigins []string

	SessionLifetime time.Duration
	ShuffleSeed     uint64

	Auth AuthConfig
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDriver:    strings.ToLower(getenv("DB_DRIVER")),
		DatabaseURL: getenv("DATABASE_URL"),
		BaseURL:     strings.TrimSuffix(getenv("BASE_URL"), "/"),
		LogLevel:    getenv("LOG_LEVEL"),
		NATSURL:     getenv("NATS_URL"),
		NATSSubject: getenv("NATS_SUBJECT"),
		Auth: AuthConfig{
			DiscordKey:         getenv("DISCORD_KEY"),
			DiscordSecret:      getenv("DISCORD_SECRET"),
			DiscordCallbackURL: getenv("DISCORD_CALLBACK_URL"),
			GoogleKey:          getenv("GOOGLE_KEY"),
			GoogleSecret:       getenv("GOOGLE_SECRET"),
			GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	switch cfg.DBDriver {
	case "", "sqlite", "sqlite3":
		cfg.DBDriver = "sqlite3"
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = defaultSQLiteURL
		}
	case "postgres", "postgresql":
		cfg.DBDriver = "postgres"
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q, expected sqlite3 or postgres", cfg.DBDriver)
	}

	port, err := intFromEnv(getenv, "SERVER_PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	if cfg.NATSSubject == "" {
		cfg.NATSSubject = defaultNATSSubject
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.BaseURL}
	}

	cfg.SessionLifetime = defaultSessionLifetime
	if raw := getenv("SESSION_LIFETIME"); raw != "" {
		lifetime, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_LIFETIME environment variable: %w", err)
		}
		if lifetime <= 0 {
			return nil, fmt.Errorf("SESSION_LIFETIME must be positive, got %s", lifetime)
		}
		cfg.SessionLifetime = lifetime
	}

	// Without a fixed seed every process shuffles differently
	cfg.ShuffleSeed = rand.Uint64()
	if raw := getenv("SHUFFLE_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUFFLE_SEED environment variable: %w", err)
		}
		cfg.ShuffleSeed = seed
	}

	return cfg, nil
}

func intFromEnv(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
