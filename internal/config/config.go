// Package config provides configuration management for the matching
// service. Settings come from three layers: hard defaults, an optional
// YAML file, and environment variables with the MATCHING_ prefix.
// Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the matching service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Notify    NotifyConfig    `yaml:"notify"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port              int     `yaml:"port"`                // Server port (default: 8000)
	Host              string  `yaml:"host"`                // Server host (default: 127.0.0.1)
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Per-client rate limit (default: 10)
	RateBurst         int     `yaml:"rate_burst"`          // Rate limiter burst size (default: 20)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	Engine      string `yaml:"engine"`       // Storage engine: sqlite, postgres (default: sqlite)
	DataPath    string `yaml:"data_path"`    // Path to data directory for sqlite (default: ./data)
	PostgresDSN string `yaml:"postgres_dsn"` // Postgres connection string
}

// EmbeddingConfig contains embedding provider configuration.
type EmbeddingConfig struct {
	Provider     string        `yaml:"provider"`       // Provider: ollama, openai (default: ollama)
	OllamaURL    string        `yaml:"ollama_url"`     // Ollama API URL (default: http://localhost:11434)
	Model        string        `yaml:"model"`          // Embedding model name
	OpenAIAPIKey string        `yaml:"openai_api_key"` // OpenAI API key
	Timeout      time.Duration `yaml:"timeout"`        // Per-request timeout (default: 30s)
}

// MatchingConfig contains ranking defaults.
type MatchingConfig struct {
	TopK               int     `yaml:"top_k"`                // Default result count (default: 10)
	MinScore           float64 `yaml:"min_score"`            // Default score floor (default: 0.3)
	RecommendationTopK int     `yaml:"recommendation_top_k"` // Default recommendation size (default: 5)
}

// NotifyConfig contains the batch notifier settings.
type NotifyConfig struct {
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"` // Match snapshot lifetime (default: 1h)
	Interval    time.Duration `yaml:"interval"`     // Sweep interval for the notifier loop (default: 10m)
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	APIToken string `yaml:"api_token"` // Bearer token for the HTTP API; empty disables auth
}

// LoadConfig loads configuration from defaults, the YAML file named by
// MATCHING_CONFIG_FILE (if set), and MATCHING_-prefixed environment
// variables, in that order of precedence (env wins).
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("MATCHING_CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads configuration like LoadConfig but from an
// explicit YAML file path instead of MATCHING_CONFIG_FILE.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8000,
			Host:              "127.0.0.1",
			RequestsPerSecond: 10,
			RateBurst:         20,
		},
		Storage: StorageConfig{
			Engine:   "sqlite",
			DataPath: "./data",
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			OllamaURL: "http://localhost:11434",
			Model:     "nomic-embed-text",
			Timeout:   30 * time.Second,
		},
		Matching: MatchingConfig{
			TopK:               10,
			MinScore:           0.3,
			RecommendationTopK: 5,
		},
		Notify: NotifyConfig{
			SnapshotTTL: time.Hour,
			Interval:    10 * time.Minute,
		},
		Security: SecurityConfig{},
	}
}

// loadFile overlays YAML settings from path onto cfg. Keys absent from
// the file keep their current values.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays MATCHING_-prefixed environment variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("MATCHING_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("MATCHING_HOST", cfg.Server.Host)
	cfg.Server.RequestsPerSecond = getEnvFloat("MATCHING_REQUESTS_PER_SECOND", cfg.Server.RequestsPerSecond)
	cfg.Server.RateBurst = getEnvInt("MATCHING_RATE_BURST", cfg.Server.RateBurst)

	cfg.Storage.Engine = getEnv("MATCHING_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DataPath = getEnv("MATCHING_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresDSN = getEnv("MATCHING_POSTGRES_DSN", cfg.Storage.PostgresDSN)

	cfg.Embedding.Provider = getEnv("MATCHING_EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.OllamaURL = getEnv("MATCHING_OLLAMA_URL", cfg.Embedding.OllamaURL)
	cfg.Embedding.Model = getEnv("MATCHING_EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.OpenAIAPIKey = getEnv("MATCHING_OPENAI_API_KEY", cfg.Embedding.OpenAIAPIKey)
	cfg.Embedding.Timeout = getEnvDuration("MATCHING_EMBEDDING_TIMEOUT", cfg.Embedding.Timeout)

	cfg.Matching.TopK = getEnvInt("MATCHING_TOP_K", cfg.Matching.TopK)
	cfg.Matching.MinScore = getEnvFloat("MATCHING_MIN_SCORE", cfg.Matching.MinScore)
	cfg.Matching.RecommendationTopK = getEnvInt("MATCHING_RECOMMENDATION_TOP_K", cfg.Matching.RecommendationTopK)

	cfg.Notify.SnapshotTTL = getEnvDuration("MATCHING_SNAPSHOT_TTL", cfg.Notify.SnapshotTTL)
	cfg.Notify.Interval = getEnvDuration("MATCHING_NOTIFY_INTERVAL", cfg.Notify.Interval)

	cfg.Security.APIToken = getEnv("MATCHING_API_TOKEN", cfg.Security.APIToken)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Engine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Storage.Engine)
	}
	if c.Storage.Engine == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("config: postgres storage engine requires MATCHING_POSTGRES_DSN")
	}
	if c.Matching.MinScore < 0 || c.Matching.MinScore > 1 {
		return fmt.Errorf("config: min score %v out of range [0, 1]", c.Matching.MinScore)
	}
	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "45s" or "2h") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
