package config

import (
	"dota-leaderboard/internal/constants"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	OpenDotaBaseURL string `validate:"required,url"`
	OpenDotaAPIKey  string
	RatePerMinute   int    `validate:"gte=1"`
	DBPath          string `validate:"required"`
	ServerPort      string `validate:"required,numeric"`
	LogLevel        string `validate:"oneof=trace debug info warn error"`
	FetchWorkers    int    `validate:"gte=1,lte=10"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		OpenDotaBaseURL: getEnv("OPENDOTA_BASE_URL", "https://api.opendota.com/api"),
		OpenDotaAPIKey:  getEnv("OPENDOTA_API_KEY", ""),
		RatePerMinute:   getEnvInt("OPENDOTA_RATE_PER_MINUTE", constants.DefaultRatePerMinute),
		DBPath:          getEnv("DB_PATH", "dota.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		FetchWorkers:    getEnvInt("FETCH_WORKERS", constants.DefaultFetchWorkers),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info().
		Str("opendota_base_url", cfg.OpenDotaBaseURL).
		Bool("opendota_api_key", cfg.OpenDotaAPIKey != "").
		Int("rate_per_minute", cfg.RatePerMinute).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("fetch_workers", cfg.FetchWorkers).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

var Module = fx.Provide(Load)
