package config

import (
	"fmt"
	"os"
	"rivals-scout/internal/constants"
	applog "rivals-scout/internal/logger"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ServerPort string
	DBPath     string
	LogLevel   string

	RivalsAPIURL string
	Season       int

	VisionProvider  string
	VisionAPIKey    string
	OpenAIAPIURL    string
	OpenAIModel     string
	AnthropicAPIURL string
	AnthropicModel  string

	HeroCatalogPath string
	StatsCacheTTL   time.Duration
}

// Overrides carries command-line values; empty fields leave the environment
// value in place.
type Overrides struct {
	EnvFile        string
	ServerPort     string
	DBPath         string
	LogLevel       string
	VisionProvider string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

func Load(logger zerolog.Logger, o Overrides) (*Config, error) {
	envFiles := []string{}
	if o.EnvFile != "" {
		envFiles = append(envFiles, o.EnvFile)
	}
	if err := godotenv.Load(envFiles...); err != nil {
		if o.EnvFile != "" {
			return nil, fmt.Errorf("failed to load env file %s: %w", o.EnvFile, err)
		}
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "scout.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RivalsAPIURL:    strings.TrimRight(getEnv("RIVALS_API_URL", "https://rivalsmeta.com"), "/"),
		VisionProvider:  strings.ToLower(getEnv("VISION_PROVIDER", ProviderOpenAI)),
		VisionAPIKey:    getEnv("VISION_API_KEY", ""),
		OpenAIAPIURL:    strings.TrimRight(getEnv("OPENAI_API_URL", "https://api.openai.com/v1"), "/"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIURL: getEnv("ANTHROPIC_API_URL", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		HeroCatalogPath: getEnv("HERO_CATALOG_PATH", ""),
	}

	season, err := strconv.Atoi(getEnv("RIVALS_SEASON", strconv.Itoa(constants.DefaultSeason)))
	if err != nil || season < 0 {
		return nil, fmt.Errorf("RIVALS_SEASON must be a non-negative integer")
	}
	cfg.Season = season

	ttl, err := time.ParseDuration(getEnv("STATS_CACHE_TTL", constants.StatsCacheTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("STATS_CACHE_TTL: %w", err)
	}
	cfg.StatsCacheTTL = ttl

	cfg.apply(o)
	logger = logger.Level(applog.ApplyLevel(cfg.LogLevel))

	if cfg.VisionProvider != ProviderOpenAI && cfg.VisionProvider != ProviderAnthropic {
		return nil, fmt.Errorf("VISION_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, cfg.VisionProvider)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("rivals_api_url", cfg.RivalsAPIURL).
		Int("season", cfg.Season).
		Str("vision_provider", cfg.VisionProvider).
		Str("vision_model", cfg.VisionModel()).
		Dur("stats_cache_ttl", cfg.StatsCacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.ServerPort != "" {
		c.ServerPort = o.ServerPort
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.VisionProvider != "" {
		c.VisionProvider = strings.ToLower(o.VisionProvider)
	}
}

func (c *Config) VisionModel() string {
	if c.VisionProvider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
