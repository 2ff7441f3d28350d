package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads, loaded once at startup
// and passed explicitly into each component.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Session SessionConfig
	CRM     CRMConfig
	Log     LogConfig
	// RulesFile optionally points at a YAML override for the built-in
	// denylist, reply texts and thresholds.
	RulesFile string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	sess, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	crm, err := loadCRMConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Session:   sess,
		CRM:       crm,
		Log:       loadLogConfig(),
		RulesFile: strings.TrimSpace(os.Getenv("RULES_FILE")),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the inference collaborator.
type AIConfig struct {
	Provider          string // "ark" or "openai"
	APIKey            string
	AccessKey         string
	SecretKey         string
	Model             string
	BaseURL           string
	Region            string
	Temperature       *float64
	MaxTokens         *int
	Timeout           time.Duration
	ClassifierEnabled bool
	CostPer1KTokens   float64
}

// Enabled reports whether credentials for a model collaborator are present.
// When false the deterministic rules-table generator serves replies.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the configured chat model instance.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide AI_MODEL plus AI_API_KEY or AK/SK")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	switch c.Provider {
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			MaxTokens:   c.MaxTokens,
			Temperature: temperature,
			Timeout:     c.Timeout,
		})
	case "ark", "":
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.BaseURL,
			Region:      c.Region,
			APIKey:      c.APIKey,
			AccessKey:   c.AccessKey,
			SecretKey:   c.SecretKey,
			Model:       c.Model,
			MaxTokens:   c.MaxTokens,
			Temperature: temperature,
		})
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", c.Provider)
	}
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	classifier, err := parseBoolEnv("AI_CLASSIFIER_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("AI_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return AIConfig{}, fmt.Errorf("invalid AI_TIMEOUT value %q: %w", raw, err)
		}
		timeout = d
	}

	cost := 0.002
	if raw := strings.TrimSpace(os.Getenv("AI_COST_PER_1K_TOKENS")); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return AIConfig{}, fmt.Errorf("invalid AI_COST_PER_1K_TOKENS value %q: %w", raw, err)
		}
		cost = val
	}

	return AIConfig{
		Provider:          strings.ToLower(getEnvOrDefault("AI_PROVIDER", "ark")),
		APIKey:            strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AccessKey:         strings.TrimSpace(os.Getenv("AI_ACCESS_KEY")),
		SecretKey:         strings.TrimSpace(os.Getenv("AI_SECRET_KEY")),
		Model:             strings.TrimSpace(os.Getenv("AI_MODEL")),
		BaseURL:           strings.TrimSpace(os.Getenv("AI_BASE_URL")),
		Region:            getEnvOrDefault("AI_REGION", "cn-beijing"),
		Temperature:       temperature,
		MaxTokens:         maxTokens,
		Timeout:           timeout,
		ClassifierEnabled: classifier,
		CostPer1KTokens:   cost,
	}, nil
}

// SessionConfig describes session persistence.
type SessionConfig struct {
	// RedisURL selects the Redis store; empty means in-memory.
	RedisURL string
	TTL      time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl := 24 * time.Hour
	if override, err := parseOptionalIntEnv("SESSION_TTL_SECONDS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL_SECONDS must be positive, got %d", *override)
		}
		ttl = time.Duration(*override) * time.Second
	}

	return SessionConfig{
		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		TTL:      ttl,
	}, nil
}

// CRMConfig describes the external CRM HTTP API.
type CRMConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Enabled reports whether a CRM endpoint is configured.
func (c CRMConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadCRMConfig() (CRMConfig, error) {
	timeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("CRM_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return CRMConfig{}, fmt.Errorf("invalid CRM_TIMEOUT value %q: %w", raw, err)
		}
		timeout = d
	}

	return CRMConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("CRM_BASE_URL")), "/"),
		APIKey:  strings.TrimSpace(os.Getenv("CRM_API_KEY")),
		Timeout: timeout,
	}, nil
}

// LogConfig describes logging sinks.
type LogConfig struct {
	Level string
	File  string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
		File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
	}
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
