// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the pipeline configuration, read from an optional
// TOML file and overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/index/elastic"
	"github.com/poiesic/petindex/ingestion"
	"github.com/poiesic/petindex/normalize"
	"github.com/poiesic/petindex/schema"
)

// Document store backends.
const (
	DocumentsFS     = "fs"
	DocumentsBadger = "badger"
	DocumentsMemory = "memory"
)

// Index store backends.
const (
	IndexElastic = "elastic"
	IndexBleve   = "bleve"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration read from strings such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// SourceConfig locates the raw dataset and its derived files.
type SourceConfig struct {
	CSV          string `toml:"csv"`
	SnapshotPath string `toml:"snapshot"`
	ImageDir     string `toml:"image_dir"`
	ImageBaseURL string `toml:"image_base_url"`
}

// DocumentsConfig selects where document units are persisted.
type DocumentsConfig struct {
	Backend string `toml:"backend"`
	// Dir is the JSON directory for "fs" and the database directory for "badger".
	Dir string `toml:"dir"`
}

// EmbeddingConfig configures the embedding provider and the build stage.
type EmbeddingConfig struct {
	Host          string   `toml:"host"`
	Model         string   `toml:"model"`
	Token         string   `toml:"token"`
	Dimensions    int      `toml:"dimensions"`
	PoolSize      int      `toml:"pool_size"`
	MaxAttempts   int      `toml:"max_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
	FailurePolicy string   `toml:"failure_policy"`
	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	// CachePath is a badger directory caching embeddings by model and text.
	// Empty disables the cache.
	CachePath string `toml:"cache_path"`
}

// IndexConfig configures the search engine.
type IndexConfig struct {
	Backend   string   `toml:"backend"`
	Name      string   `toml:"name"`
	Addresses []string `toml:"addresses"`
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
	APIKey    string   `toml:"api_key"`
	Refresh   string   `toml:"refresh"`
	BatchSize int      `toml:"batch_size"`
	// BleveDir holds Bleve indexes. Empty keeps them in memory.
	BleveDir string `toml:"bleve_dir"`
}

// Config is the full pipeline configuration.
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Documents DocumentsConfig `toml:"documents"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithSourceCSV sets the raw dataset path.
func WithSourceCSV(path string) Option {
	return func(c *Config) {
		c.Source.CSV = path
	}
}

// WithDocuments sets the document store backend and directory.
func WithDocuments(backend, dir string) Option {
	return func(c *Config) {
		c.Documents.Backend = backend
		c.Documents.Dir = dir
	}
}

// WithIndex sets the index backend and name.
func WithIndex(backend, name string) Option {
	return func(c *Config) {
		c.Index.Backend = backend
		c.Index.Name = name
	}
}

// WithAddresses sets the Elasticsearch addresses.
func WithAddresses(addresses ...string) Option {
	return func(c *Config) {
		c.Index.Addresses = addresses
	}
}

// DefaultConfig returns the configuration of a local run: the dataset under
// data/, JSON documents on disk, a local embedding server and a local
// Elasticsearch node.
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Source: SourceConfig{
			CSV:          "data/raw/pet_description/train.csv",
			SnapshotPath: normalize.DefaultSnapshotPath,
			ImageDir:     "static/images",
		},
		Documents: DocumentsConfig{
			Backend: DocumentsFS,
			Dir:     "data/processed/pets_json",
		},
		Embedding: EmbeddingConfig{
			Host:          aiDefaults.EmbeddingHost,
			Model:         aiDefaults.EmbeddingModel,
			Token:         aiDefaults.Token,
			Dimensions:    aiDefaults.Dimensions,
			MaxAttempts:   1,
			RetryDelay:    Duration{500 * time.Millisecond},
			FailurePolicy: ingestion.FailFast.String(),
		},
		Index: IndexConfig{
			Backend:   IndexElastic,
			Name:      schema.DefaultIndexName,
			Addresses: []string{elastic.DefaultAddress},
			Refresh:   elastic.DefaultRefresh,
			BatchSize: 500,
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Normalize puts the configuration in canonical form.
func (c *Config) Normalize() {
	c.Documents.Backend = strings.ToLower(strings.TrimSpace(c.Documents.Backend))
	c.Index.Backend = strings.ToLower(strings.TrimSpace(c.Index.Backend))
	c.Embedding.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Embedding.FailurePolicy))
	if c.Embedding.MaxAttempts == 0 {
		c.Embedding.MaxAttempts = 1
	}
	if c.Index.Name == "" {
		c.Index.Name = schema.DefaultIndexName
	}
	addresses := c.Index.Addresses[:0]
	for _, a := range c.Index.Addresses {
		if a = strings.TrimRight(strings.TrimSpace(a), "/"); a != "" {
			addresses = append(addresses, a)
		}
	}
	c.Index.Addresses = addresses
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Source.CSV == "" {
		return fmt.Errorf("%w: source csv is required", ErrInvalidConfig)
	}
	switch c.Documents.Backend {
	case DocumentsFS, DocumentsBadger:
		if c.Documents.Dir == "" {
			return fmt.Errorf("%w: documents dir is required for %s", ErrInvalidConfig, c.Documents.Backend)
		}
	case DocumentsMemory:
	default:
		return fmt.Errorf("%w: unknown documents backend %q", ErrInvalidConfig, c.Documents.Backend)
	}
	switch c.Index.Backend {
	case IndexElastic:
		if len(c.Index.Addresses) == 0 {
			return fmt.Errorf("%w: at least one index address is required", ErrInvalidConfig)
		}
	case IndexBleve:
	default:
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfig, c.Index.Backend)
	}
	if c.Index.BatchSize < 0 {
		return fmt.Errorf("%w: index batch_size must not be negative", ErrInvalidConfig)
	}
	if _, err := ingestion.ParseFailurePolicy(c.Embedding.FailurePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Embedding.MaxAttempts < 1 {
		return fmt.Errorf("%w: embedding max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding requests_per_second must not be negative", ErrInvalidConfig)
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig returns the embedding provider configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithToken(c.Embedding.Token),
		ai.WithDimensions(c.Embedding.Dimensions),
	)
}

// ElasticConfig returns the Elasticsearch connection settings.
func (c *Config) ElasticConfig() elastic.Config {
	return elastic.Config{
		Addresses: c.Index.Addresses,
		Username:  c.Index.Username,
		Password:  c.Index.Password,
		APIKey:    c.Index.APIKey,
		Refresh:   c.Index.Refresh,
	}
}

// FailurePolicy returns the parsed embedding failure policy.
func (c *Config) FailurePolicy() ingestion.FailurePolicy {
	p, err := ingestion.ParseFailurePolicy(c.Embedding.FailurePolicy)
	if err != nil {
		return ingestion.FailFast
	}
	return p
}
