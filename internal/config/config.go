package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the embedding service client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (c EmbedderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// StoreConfig contains connection details for the replicated document store.
type StoreConfig struct {
	// URI, when set, is used as-is and the host list is ignored.
	URI        string   `yaml:"uri"`
	Hosts      []string `yaml:"hosts"`
	ReplicaSet string   `yaml:"replica_set"`
	Database   string   `yaml:"database"`
	Collection string   `yaml:"collection"`
}

// CorpusConfig describes where source files live and how they are selected.
type CorpusConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
}

// Config is the root application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Store    StoreConfig    `yaml:"store"`
	LogFile  string         `yaml:"log_file"`
}

// FromEnv builds a configuration from environment variables over defaults.
func FromEnv() *Config {
	cfg := defaultConfig()

	cfg.Corpus.Dir = getEnvWithDefault("CORPUS_DIR", cfg.Corpus.Dir)
	cfg.Corpus.Extension = getEnvWithDefault("CORPUS_EXTENSION", cfg.Corpus.Extension)

	cfg.Embedder.BaseURL = getEnvWithDefault("EMBED_BASE_URL", cfg.Embedder.BaseURL)
	cfg.Embedder.APIKeyEnv = getEnvWithDefault("EMBED_API_KEY_ENV", cfg.Embedder.APIKeyEnv)
	cfg.Embedder.Model = getEnvWithDefault("EMBED_MODEL", cfg.Embedder.Model)
	if v := os.Getenv("EMBED_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedder.Dimension = n
		}
	}
	if v := os.Getenv("EMBED_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedder.TimeoutSecs = n
		}
	}

	cfg.Store.URI = getEnvWithDefault("MONGO_URI", cfg.Store.URI)
	if v := os.Getenv("MONGO_HOSTS"); v != "" {
		cfg.Store.Hosts = splitAndTrim(v)
	}
	cfg.Store.ReplicaSet = getEnvWithDefault("MONGO_REPLICA_SET", cfg.Store.ReplicaSet)
	cfg.Store.Database = getEnvWithDefault("MONGO_DATABASE", cfg.Store.Database)
	cfg.Store.Collection = getEnvWithDefault("MONGO_COLLECTION", cfg.Store.Collection)

	cfg.LogFile = getEnvWithDefault("LOG_FILE", cfg.LogFile)

	return cfg
}

// Load builds the configuration from the environment and, when path is not
// empty, layers a YAML file on top of it. File values win over env values.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for a run.
func (c *Config) Validate() error {
	if c.Corpus.Dir == "" {
		return fmt.Errorf("corpus dir is required")
	}
	if !strings.HasPrefix(c.Corpus.Extension, ".") {
		return fmt.Errorf("corpus extension must start with a dot, got %q", c.Corpus.Extension)
	}
	if c.Embedder.BaseURL == "" {
		return fmt.Errorf("embedder base URL is required")
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder dimension must be positive, got %d", c.Embedder.Dimension)
	}
	if c.Store.URI == "" && len(c.Store.Hosts) == 0 {
		return fmt.Errorf("store needs a URI or at least one host")
	}
	if c.Store.Database == "" || c.Store.Collection == "" {
		return fmt.Errorf("store database and collection names are required")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir:       "./corpus",
			Extension: ".txt",
		},
		Embedder: EmbedderConfig{
			BaseURL:     "http://localhost:8080/v1",
			APIKeyEnv:   "EMBED_API_KEY",
			Model:       "all-MiniLM-L6-v2",
			Dimension:   384,
			TimeoutSecs: 30,
		},
		Store: StoreConfig{
			Hosts:      []string{"localhost:3001", "localhost:3002", "localhost:3003"},
			ReplicaSet: "rs",
			Database:   "politics",
			Collection: "speeches",
		},
	}
}

// getEnvWithDefault gets an environment variable or returns a default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
