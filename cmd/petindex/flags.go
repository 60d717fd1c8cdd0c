package main

import (
	"fmt"

	"github.com/poiesic/petindex/config"
	"github.com/urfave/cli/v2"
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "TOML configuration file; flags override its values",
			EnvVars: []string{"PETINDEX_CONFIG"},
		},
		&cli.StringFlag{Name: "source", Usage: "Raw pet dataset CSV"},
		&cli.StringFlag{Name: "snapshot", Usage: "Cleaned snapshot CSV path"},
		&cli.StringFlag{Name: "image-dir", Usage: "Directory holding {PetID}-1.jpg photos"},
		&cli.StringFlag{Name: "documents-backend", Usage: "Document store (fs, badger, memory)"},
		&cli.StringFlag{Name: "documents-dir", Usage: "Document store directory"},
		&cli.StringFlag{Name: "embedding-host", Usage: "Embedding service host URL"},
		&cli.StringFlag{Name: "embedding-model", Usage: "Embedding model name"},
		&cli.IntFlag{Name: "dimensions", Usage: "Embedding vector length"},
		&cli.IntFlag{Name: "workers", Usage: "Concurrent embedding calls"},
		&cli.StringFlag{Name: "failure-policy", Usage: "On embedding failure: fail-fast or skip"},
		&cli.Float64Flag{Name: "rps", Usage: "Maximum embedding requests per second (0 = unlimited)"},
		&cli.StringFlag{Name: "embedding-cache", Usage: "Badger directory caching embeddings"},
		&cli.StringFlag{Name: "index-backend", Usage: "Search engine (elastic, bleve)"},
		&cli.StringFlag{Name: "index-name", Usage: "Target index name"},
		&cli.StringSliceFlag{
			Name:    "es-address",
			Usage:   "Elasticsearch address (repeatable)",
			EnvVars: []string{"ELASTICSEARCH_URL"},
		},
		&cli.StringFlag{Name: "es-api-key", Usage: "Elasticsearch API key", EnvVars: []string{"ELASTICSEARCH_API_KEY"}},
		&cli.StringFlag{Name: "bleve-dir", Usage: "Directory for Bleve indexes (empty = in memory)"},
		&cli.IntFlag{Name: "bulk-size", Usage: "Documents per bulk request (0 = one request)"},
	}
}

// loadConfig reads the optional config file and applies explicitly set flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	setInt := func(flag string, dst *int) {
		if c.IsSet(flag) {
			*dst = c.Int(flag)
		}
	}

	setString("source", &cfg.Source.CSV)
	setString("snapshot", &cfg.Source.SnapshotPath)
	setString("image-dir", &cfg.Source.ImageDir)
	setString("documents-backend", &cfg.Documents.Backend)
	setString("documents-dir", &cfg.Documents.Dir)
	setString("embedding-host", &cfg.Embedding.Host)
	setString("embedding-model", &cfg.Embedding.Model)
	setInt("dimensions", &cfg.Embedding.Dimensions)
	setInt("workers", &cfg.Embedding.PoolSize)
	setString("failure-policy", &cfg.Embedding.FailurePolicy)
	setString("embedding-cache", &cfg.Embedding.CachePath)
	setString("index-backend", &cfg.Index.Backend)
	setString("index-name", &cfg.Index.Name)
	setString("es-api-key", &cfg.Index.APIKey)
	setString("bleve-dir", &cfg.Index.BleveDir)
	setInt("bulk-size", &cfg.Index.BatchSize)
	if c.IsSet("rps") {
		cfg.Embedding.RequestsPerSecond = c.Float64("rps")
	}
	if c.IsSet("es-address") {
		cfg.Index.Addresses = c.StringSlice("es-address")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
