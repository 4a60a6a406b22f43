package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/store"
)

// Config aggregates the mission server's runtime settings, loaded from the
// environment with an optional .env file for local development.
type Config struct {
	Server   ServerConfig
	Redis    store.Config
	Audio    AudioConfig
	Scenario ScenarioConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type AudioConfig struct {
	Enabled bool
}

type ScenarioConfig struct {
	Path         string
	TickInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads .env if present, then builds the config from the environment.
func Load() Config {
	// Missing .env is the normal case outside local dev.
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: store.Config{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Audio: AudioConfig{
			Enabled: getEnvBool("AUDIO_ENABLED", false),
		},
		Scenario: ScenarioConfig{
			Path:         getEnv("SCENARIO_PATH", "configs/scenario.yaml"),
			TickInterval: getEnvDuration("TICK_INTERVAL", 50*time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string { return c.Host + ":" + c.Port }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
