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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "petindex",
		Usage: "Build and search a pet adoption index with semantic embeddings",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		}, configFlags()...),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Normalize, build and load in one pass",
				Action: runCommand,
				Flags:  []cli.Flag{progressFlag()},
			},
			{
				Name:   "normalize",
				Usage:  "Clean the raw CSV and write the snapshot",
				Action: normalizeCommand,
			},
			{
				Name:   "build",
				Usage:  "Embed the snapshot records and write one document per pet",
				Action: buildCommand,
				Flags:  []cli.Flag{progressFlag()},
			},
			{
				Name:   "load",
				Usage:  "Create the index if needed and bulk load every document",
				Action: loadCommand,
			},
			{
				Name:      "search",
				Usage:     "Query the index",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (text, semantic)",
						Value: "text",
					},
					&cli.IntFlag{
						Name:    "size",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   12,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON lines",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the embedding of every stored document",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed per call",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration as TOML",
				Action: configCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				},
			},
		},
	}
}

func progressFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "progress",
		Usage: "Report build progress every N documents (0 disables)",
		Value: 100,
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
