package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Log       LogConfig        `mapstructure:"log"`
	Redis     RedisConfig      `mapstructure:"redis"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Router    RouterConfig     `mapstructure:"router" validate:"required"`
	Catalog   CatalogConfig    `mapstructure:"catalog"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port" validate:"required"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// RouterConfig drives the fallback router.
type RouterConfig struct {
	// Provider is the ID of the provider every attempt is dispatched to.
	Provider      string        `mapstructure:"provider" validate:"required"`
	DefaultOrder  []string      `mapstructure:"default_order"`
	PopularModels []string      `mapstructure:"popular_models"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	AppName       string        `mapstructure:"app_name"`
	AppURL        string        `mapstructure:"app_url"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ProviderConfig describes one upstream OpenAI-compatible endpoint.
type ProviderConfig struct {
	ID      string            `mapstructure:"id" validate:"required"`
	Type    string            `mapstructure:"type" validate:"required,oneof=openai openrouter groq"`
	Name    string            `mapstructure:"name"`
	APIKey  string            `mapstructure:"api_key" validate:"required"`
	BaseURL string            `mapstructure:"base_url" validate:"omitempty,url"`
	Enabled bool              `mapstructure:"enabled"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Config  map[string]string `mapstructure:"config"`
}

// DefaultRoutingOrder is the primary-to-fallback order used when the caller gives none.
var DefaultRoutingOrder = []string{
	"openai/gpt-5-codex",
	"openai/gpt-4",
	"openai/gpt-4o-audio-preview",
	"openai/gpt-5-chat",
	"openai/gpt-5",
	"openai/gpt-5-mini",
	"meta-llama/llama-2-70b-chat",
	"mistralai/mixtral-8x7b-instruct",
}

// DefaultPopularModels seeds the popular model selection.
var DefaultPopularModels = []string{
	"openai/gpt-4-turbo",
	"openai/gpt-4",
	"openai/gpt-3.5-turbo",
	"anthropic/claude-3-sonnet",
	"anthropic/claude-3-haiku",
	"google/gemini-pro",
	"meta-llama/llama-2-70b-chat",
	"mistralai/mixtral-8x7b-instruct",
	"openai/gpt-4o",
	"anthropic/claude-3-opus",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./internal/config")
	}

	setDefaults(v)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// slices are not picked up from env by AutomaticEnv+Unmarshal
	if order := v.GetStringSlice("router.default_order"); len(order) > 0 {
		cfg.Router.DefaultOrder = order
	}

	// Resolve API Keys
	for i, p := range cfg.Providers {
		cfg.Providers[i].APIKey = resolveSecret(v, p.APIKey)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultProviders(v)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("database.path", "openroute.db")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "openroute")
	v.SetDefault("router.provider", "openrouter")
	v.SetDefault("router.default_order", DefaultRoutingOrder)
	v.SetDefault("router.popular_models", DefaultPopularModels)
	v.SetDefault("router.retry_delay", time.Second)
	v.SetDefault("router.timeout", 60*time.Second)
	v.SetDefault("router.app_name", "ModelRouter")
	v.SetDefault("router.app_url", "")
	v.SetDefault("catalog.cache_ttl", 10*time.Minute)
}

// defaultProviders is used when the config file declares none: one OpenRouter
// provider keyed by OPENROUTER_API_KEY.
func defaultProviders(v *viper.Viper) []ProviderConfig {
	return []ProviderConfig{
		{
			ID:      "openrouter",
			Type:    "openrouter",
			Name:    "OpenRouter",
			APIKey:  resolveSecret(v, "ENV:OPENROUTER_API_KEY"),
			Enabled: true,
		},
	}
}

// resolveSecret expands "ENV:NAME" references.
func resolveSecret(v *viper.Viper, value string) string {
	if !strings.HasPrefix(value, "ENV:") {
		return value
	}
	envVar := strings.TrimPrefix(value, "ENV:")
	// Check process environment first (explicit override)
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	// Then check viper (which might have it from other sources)
	return v.GetString(envVar)
}
