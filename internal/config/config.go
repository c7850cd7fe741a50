package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Models    ModelsConfig    `mapstructure:"models"`
	APIKeys   []string        `mapstructure:"api_keys"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

type CacheConfig struct {
	ResponseTTL time.Duration `mapstructure:"response_ttl"`
	CatalogTTL  time.Duration `mapstructure:"catalog_ttl"`
	TemplateTTL time.Duration `mapstructure:"template_ttl"`
}

type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProvidersConfig struct {
	AIEngine   ProviderConfig `mapstructure:"ai_engine"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

type ModelsConfig struct {
	// Defaults maps feature name to the model used when a request names none.
	Defaults         map[string]string `mapstructure:"defaults"`
	DefaultChatModel string            `mapstructure:"default_chat_model"`
}

// LoadConfig reads configuration from config.yaml and environment variables.
// Env vars win over file values; API keys support ENV: indirection so the
// file never carries secrets.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.dsn", "orchestrator.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", 2*time.Second)
	v.SetDefault("retry.jitter", 0.2)
	v.SetDefault("cache.response_ttl", 30*time.Minute)
	v.SetDefault("cache.catalog_ttl", time.Hour)
	v.SetDefault("cache.template_ttl", 10*time.Minute)
	v.SetDefault("providers.ai_engine.base_url", "http://localhost:8000")
	v.SetDefault("providers.ai_engine.timeout", 60*time.Second)
	v.SetDefault("providers.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("providers.openrouter.timeout", 60*time.Second)
	v.SetDefault("models.default_chat_model", "openai/gpt-4o-mini")

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

	cfg.Providers.AIEngine.APIKey = resolveKey(v, cfg.Providers.AIEngine.APIKey)
	cfg.Providers.OpenRouter.APIKey = resolveKey(v, cfg.Providers.OpenRouter.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveKey expands "ENV:VAR" references against the process environment.
func resolveKey(v *viper.Viper, key string) string {
	if !strings.HasPrefix(key, "ENV:") {
		return key
	}
	envVar := strings.TrimPrefix(key, "ENV:")
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return v.GetString(envVar)
}

func (c *Config) validate() error {
	if c.Queue.Concurrency < 1 {
		return fmt.Errorf("queue.concurrency must be at least 1, got %d", c.Queue.Concurrency)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter >= 1 {
		return fmt.Errorf("retry.jitter must be in [0, 1), got %f", c.Retry.Jitter)
	}
	return nil
}
