package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/asistente-hogar/backend/internal/service/ai"
	"github.com/asistente-hogar/backend/internal/service/places"
	"github.com/asistente-hogar/backend/internal/service/ratelimit"
)

// Providers accepted in AI_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// Config groups every setting of the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Places    PlacesConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	aiCfg, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	rl, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	pl, err := loadPlacesConfig()
	if err != nil {
		return nil, err
	}

	tel, err := loadTelemetryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        aiCfg,
		RateLimit: rl,
		Places:    pl,
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
		Telemetry: tel,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := getEnvOrDefault("PORT", "3000")
	return parseAddr(port)
}

// parseAddr accepts "3000", ":3000" or "127.0.0.1:3000".
func parseAddr(port string) (ServerConfig, error) {
	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

// WithAddr overrides the listen address when addr is not empty.
func (c ServerConfig) WithAddr(addr string) (ServerConfig, error) {
	if strings.TrimSpace(addr) == "" {
		return c, nil
	}
	return parseAddr(strings.TrimSpace(addr))
}

// AIConfig describes the upstream model.
type AIConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	APIKey            string
	AccessKey         string
	SecretKey         string
	Model             string
	BaseURL           string
	Region            string
	Temperature       *float64
	TopP              *float64
	MaxTokens         *int
	SystemInstruction string
}

// Enabled reports whether the selected provider has credentials.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return c.GeminiAPIKey != ""
	}
}

// NewModel builds the upstream model for the selected provider.
func (c AIConfig) NewModel(ctx context.Context, systemInstruction string) (ai.Model, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing credentials for ai provider %q", c.Provider)
	}

	if c.Provider == ProviderArk {
		chatModel, err := c.NewChatModel(ctx)
		if err != nil {
			return nil, err
		}
		chain, err := ai.NewChainModel(ctx, chatModel, systemInstruction, nil)
		if err != nil {
			return nil, err
		}
		return chain, nil
	}

	gemini, err := ai.NewGeminiModel(ctx, c.GeminiConfig(systemInstruction))
	if err != nil {
		return nil, err
	}
	return gemini, nil
}

// GeminiConfig maps the shared sampling settings onto the Gemini client.
func (c AIConfig) GeminiConfig(systemInstruction string) ai.GeminiConfig {
	cfg := ai.GeminiConfig{
		APIKey:            c.GeminiAPIKey,
		Model:             c.GeminiModel,
		SystemInstruction: systemInstruction,
		Temperature:       toFloat32(c.Temperature),
		TopP:              toFloat32(c.TopP),
	}
	if c.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*c.MaxTokens)
	}
	return cfg
}

// NewChatModel creates the Ark chat model used by the eino chain.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Model == "" || (c.APIKey == "" && (c.AccessKey == "" || c.SecretKey == "")) {
		return nil, errors.New("ark credentials missing, set ARK_API_KEY and ARK_MODEL or an AK/SK pair")
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: toFloat32(c.Temperature),
		TopP:        toFloat32(c.TopP),
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:          provider,
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		APIKey:            strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:         strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:         strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:             strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:           getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:            getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:       temperature,
		TopP:              topP,
		MaxTokens:         maxTokens,
		SystemInstruction: strings.TrimSpace(os.Getenv("AI_SYSTEM_INSTRUCTION")),
	}, nil
}

// RateLimitConfig shapes the per-session token bucket.
type RateLimitConfig struct {
	Capacity    int
	RefillEvery time.Duration
	RetryAfter  time.Duration
}

// Limiter converts the settings for the ratelimit package.
func (c RateLimitConfig) Limiter() ratelimit.Config {
	return ratelimit.Config{
		Capacity:    c.Capacity,
		RefillEvery: c.RefillEvery,
		RetryAfter:  c.RetryAfter,
	}
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	capacity, err := intEnvOrDefault("RATE_LIMIT_CAPACITY", ratelimit.DefaultCapacity)
	if err != nil {
		return RateLimitConfig{}, err
	}
	refill, err := secondsEnvOrDefault("RATE_LIMIT_REFILL_SECONDS", ratelimit.DefaultRefillEvery)
	if err != nil {
		return RateLimitConfig{}, err
	}
	retry, err := secondsEnvOrDefault("RATE_LIMIT_RETRY_AFTER_SECONDS", ratelimit.DefaultRetryAfter)
	if err != nil {
		return RateLimitConfig{}, err
	}
	if capacity < 1 {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_CAPACITY value %d", capacity)
	}
	return RateLimitConfig{Capacity: capacity, RefillEvery: refill, RetryAfter: retry}, nil
}

// PlacesConfig points the places lookup at its geo APIs.
type PlacesConfig struct {
	OverpassURL  string
	NominatimURL string
	UserAgent    string
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// Service converts the settings for the places package.
func (c PlacesConfig) Service() places.Config {
	return places.Config{
		OverpassURL:  c.OverpassURL,
		NominatimURL: c.NominatimURL,
		UserAgent:    c.UserAgent,
		CacheTTL:     c.CacheTTL,
	}
}

func loadPlacesConfig() (PlacesConfig, error) {
	ttl, err := secondsEnvOrDefault("PLACES_CACHE_TTL_SECONDS", 10*time.Minute)
	if err != nil {
		return PlacesConfig{}, err
	}
	timeout, err := secondsEnvOrDefault("GEO_TIMEOUT_SECONDS", 30*time.Second)
	if err != nil {
		return PlacesConfig{}, err
	}

	return PlacesConfig{
		OverpassURL:  getEnvOrDefault("OVERPASS_URL", places.DefaultOverpassURL),
		NominatimURL: getEnvOrDefault("NOMINATIM_URL", places.DefaultNominatimURL),
		UserAgent:    getEnvOrDefault("GEO_USER_AGENT", "asistente-hogar/1.0 (contacto@asistentehogar.ar)"),
		CacheTTL:     ttl,
		Timeout:      timeout,
	}, nil
}

// LogConfig selects the log level and an optional rotating file.
type LogConfig struct {
	Level string
	File  string
}

// TelemetryConfig toggles the OpenTelemetry file exporters.
type TelemetryConfig struct {
	Enabled bool
	Dir     string
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	enabled, err := parseBoolEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, err
	}
	return TelemetryConfig{Enabled: enabled, Dir: getEnvOrDefault("OTEL_DIR", "logs")}, nil
}

func toFloat32(v *float64) *float32 {
	if v == nil {
		return nil
	}
	val := float32(*v)
	return &val
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func intEnvOrDefault(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil || val == nil {
		return defaultValue, err
	}
	return *val, nil
}

func secondsEnvOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	val, err := parseOptionalFloatEnv(key)
	if err != nil || val == nil {
		return defaultValue, err
	}
	if *val <= 0 {
		return 0, fmt.Errorf("invalid %s value %v: must be positive", key, *val)
	}
	return time.Duration(*val * float64(time.Second)), nil
}
