package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "DB_PATH", "LOG_LEVEL", "RIVALS_API_URL", "RIVALS_SEASON",
		"VISION_PROVIDER", "VISION_API_KEY", "OPENAI_API_URL", "OPENAI_MODEL",
		"ANTHROPIC_API_URL", "ANTHROPIC_MODEL", "HERO_CATALOG_PATH", "STATS_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(zerolog.Nop(), Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" || cfg.DBPath != "scout.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Season != 2 {
		t.Errorf("Season = %d, want 2", cfg.Season)
	}
	if cfg.VisionProvider != ProviderOpenAI || cfg.VisionModel() != "gpt-4o-mini" {
		t.Errorf("vision = %s/%s", cfg.VisionProvider, cfg.VisionModel())
	}
	if cfg.StatsCacheTTL != 2*time.Minute {
		t.Errorf("StatsCacheTTL = %v", cfg.StatsCacheTTL)
	}
}

func TestLoadOverridesAndEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "scout.env")
	if err := os.WriteFile(envFile, []byte("RIVALS_SEASON=3\nRIVALS_API_URL=http://localhost:9000/\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, including
	// empty ones set by clearEnv.
	os.Unsetenv("RIVALS_SEASON")
	os.Unsetenv("RIVALS_API_URL")

	cfg, err := Load(zerolog.Nop(), Overrides{
		EnvFile:        envFile,
		ServerPort:     "9999",
		VisionProvider: "Anthropic",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Season != 3 {
		t.Errorf("Season = %d, want 3", cfg.Season)
	}
	if cfg.RivalsAPIURL != "http://localhost:9000" {
		t.Errorf("RivalsAPIURL = %q", cfg.RivalsAPIURL)
	}
	if cfg.ServerPort != "9999" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.VisionProvider != ProviderAnthropic {
		t.Errorf("VisionProvider = %q", cfg.VisionProvider)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("VISION_PROVIDER", "gemini")
	if _, err := Load(zerolog.Nop(), Overrides{}); err == nil {
		t.Error("expected error for unknown provider")
	}

	t.Setenv("VISION_PROVIDER", "")
	t.Setenv("RIVALS_SEASON", "abc")
	if _, err := Load(zerolog.Nop(), Overrides{}); err == nil {
		t.Error("expected error for bad season")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(zerolog.Nop(), Overrides{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("expected error for missing explicit env file")
	}
}

func TestLoadAppliesLogLevel(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Setenv("LOG_LEVEL", "error")
	if _, err := Load(zerolog.Nop(), Overrides{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := zerolog.GlobalLevel(); got != zerolog.ErrorLevel {
		t.Errorf("global level = %v, want %v", got, zerolog.ErrorLevel)
	}
}
