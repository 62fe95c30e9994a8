package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Augmenter configuration. Mistral is tried first, Groq second.
	AugmenterEnabled   bool
	AugmenterTimeout   time.Duration
	AugmenterCacheSize int
	Mistral            Provider
	Groq               Provider

	// Query audit publishing. Disabled when KafkaBrokers is empty.
	KafkaBrokers       []string
	KafkaAuditTopic    string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Provider configures one OpenAI-compatible chat completion endpoint.
type Provider struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
}

// Configured reports whether the provider has an API key.
func (p Provider) Configured() bool { return p.APIKey != "" }

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing file is fine

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	batchFlushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}
	augmenterTimeout, err := parseDuration("AUGMENTER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("AUGMENTER_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AugmenterTimeout:   augmenterTimeout,
		AugmenterCacheSize: cacheSize,
		Mistral: Provider{
			Name:    "mistral",
			APIKey:  os.Getenv("MISTRAL_API_KEY"),
			Model:   sharedcfg.EnvOrDefault("MISTRAL_MODEL", "open-mistral-7b"),
			BaseURL: sharedcfg.EnvOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		},
		Groq: Provider{
			Name:    "groq",
			APIKey:  os.Getenv("GROQ_API_KEY"),
			Model:   sharedcfg.EnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
			BaseURL: sharedcfg.EnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		},

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic:    sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "floatchat-queries"),
		BatchSize:          batchSize,
		BatchFlushInterval: batchFlushInterval,
	}

	cfg.AugmenterEnabled = cfg.Mistral.Configured() || cfg.Groq.Configured()
	if v := os.Getenv("AUGMENTER_ENABLED"); v != "" {
		cfg.AugmenterEnabled = v == "true"
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.AugmenterEnabled && !cfg.Mistral.Configured() && !cfg.Groq.Configured() {
		return nil, errors.New("AUGMENTER_ENABLED is true but neither MISTRAL_API_KEY nor GROQ_API_KEY is set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// Providers returns the configured augmenter providers in fallback order.
func (c *Config) Providers() []Provider {
	var out []Provider
	for _, p := range []Provider{c.Mistral, c.Groq} {
		if p.Configured() {
			out = append(out, p)
		}
	}
	return out
}

// AuditEnabled reports whether query events should be published to Kafka.
func (c *Config) AuditEnabled() bool { return len(c.KafkaBrokers) > 0 }

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
