package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "AI_TEMPERATURE",
		"RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_SECONDS", "RATE_LIMIT_RETRY_AFTER_SECONDS",
		"PLACES_CACHE_TTL_SECONDS", "OTEL_ENABLED", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":3000" {
		t.Fatalf("expected :3000, got %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderGemini || cfg.AI.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.AI.Enabled() {
		t.Fatalf("expected ai disabled without api key")
	}
	if cfg.RateLimit.Capacity != 5 || cfg.RateLimit.RefillEvery != 6*time.Second || cfg.RateLimit.RetryAfter != 6*time.Second {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Places.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected cache ttl: %s", cfg.Places.CacheTTL)
	}
	if cfg.Telemetry.Enabled || cfg.Log.Level != "info" {
		t.Fatalf("unexpected ambient defaults: %+v %+v", cfg.Telemetry, cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:8081")
	t.Setenv("AI_PROVIDER", "Ark")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("AI_TEMPERATURE", "0.4")
	t.Setenv("AI_MAX_TOKENS", "512")
	t.Setenv("RATE_LIMIT_REFILL_SECONDS", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8081" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderArk || !cfg.AI.Enabled() {
		t.Fatalf("expected ark enabled: %+v", cfg.AI)
	}
	if cfg.RateLimit.RefillEvery != 1500*time.Millisecond {
		t.Fatalf("unexpected refill %s", cfg.RateLimit.RefillEvery)
	}

	gemini := cfg.AI.GeminiConfig("sys")
	if gemini.Temperature == nil || *gemini.Temperature != float32(0.4) || gemini.MaxOutputTokens != 512 {
		t.Fatalf("unexpected gemini mapping: %+v", gemini)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AI_PROVIDER":         "openai",
		"AI_TEMPERATURE":      "warm",
		"RATE_LIMIT_CAPACITY": "0",
		"OTEL_ENABLED":        "maybe",
		"PORT":                "80 80",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestServerWithAddr(t *testing.T) {
	base := ServerConfig{Addr: ":3000"}

	got, err := base.WithAddr("9090")
	if err != nil || got.Addr != ":9090" {
		t.Fatalf("unexpected override: %+v %v", got, err)
	}

	got, err = base.WithAddr("")
	if err != nil || got.Addr != ":3000" {
		t.Fatalf("empty override changed addr: %+v %v", got, err)
	}
}
