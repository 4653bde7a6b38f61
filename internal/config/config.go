// Package config loads and validates the server configuration from a JSON
// file, expanding ${ENV_VAR} placeholders so secrets can stay out of the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/TatievskiArik/Article-RAG-System/internal/similarity"
)

// Config is the root server configuration.
type Config struct {
	Port    int    `json:"port"`
	DataDir string `json:"data_dir,omitempty"`

	Azure       AzureConfig       `json:"azure"`
	Search      SearchConfig      `json:"search,omitempty"`
	Maintenance MaintenanceConfig `json:"maintenance,omitempty"`
	Usage       UsageConfig       `json:"usage,omitempty"`

	// PromptTemplate is an optional YAML file overriding the built-in
	// system-prompt template.
	PromptTemplate string `json:"prompt_template,omitempty"`
}

// AzureConfig holds Azure OpenAI connection settings. APIKey supports
// ${ENV_VAR} expansion.
type AzureConfig struct {
	Endpoint            string `json:"endpoint"`
	APIKey              string `json:"api_key"`
	APIVersion          string `json:"api_version,omitempty"`
	EmbeddingDeployment string `json:"embedding_deployment"`
	ChatDeployment      string `json:"chat_deployment"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	Floor float64 `json:"relevance_floor,omitempty"` // minimum cosine score
	TopK  int     `json:"top_k,omitempty"`           // maximum results per query
}

// MaintenanceConfig controls the scheduled consistency sweep.
type MaintenanceConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"` // cron expression or @hourly style
}

// UsageConfig controls token-usage accounting.
type UsageConfig struct {
	Enabled *bool `json:"enabled,omitempty"` // defaults to true
}

// IsEnabled returns whether usage accounting is on. Defaults to true.
func (u *UsageConfig) IsEnabled() bool {
	if u.Enabled == nil {
		return true
	}
	return *u.Enabled
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port: 8080,
		Azure: AzureConfig{
			APIVersion: "2024-02-01",
		},
		Search: SearchConfig{
			Floor: similarity.DefaultFloor,
			TopK:  similarity.DefaultTopK,
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "@hourly",
		},
	}
}

// Load reads the configuration from path, applying defaults for absent fields
// and expanding environment placeholders. A missing file is not an error; the
// defaults are returned so the server can start from environment alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.expandEnvVars()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields whose zero values would only fail much later at
// request time.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.Search.Floor < -1 || c.Search.Floor >= 1 {
		return fmt.Errorf("config: relevance_floor %v out of range [-1, 1)", c.Search.Floor)
	}
	if c.Search.TopK < 0 {
		return fmt.Errorf("config: top_k must not be negative")
	}
	return nil
}

// expandEnvVars expands ${ENV_VAR} placeholders in values that commonly carry
// secrets or machine-specific paths.
func (c *Config) expandEnvVars() {
	c.DataDir = os.ExpandEnv(c.DataDir)
	c.PromptTemplate = os.ExpandEnv(c.PromptTemplate)
	c.Azure.Endpoint = os.ExpandEnv(c.Azure.Endpoint)
	c.Azure.APIKey = os.ExpandEnv(c.Azure.APIKey)
	c.Azure.EmbeddingDeployment = os.ExpandEnv(c.Azure.EmbeddingDeployment)
	c.Azure.ChatDeployment = os.ExpandEnv(c.Azure.ChatDeployment)
}
