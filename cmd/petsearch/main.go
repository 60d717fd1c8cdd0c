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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/petindex"
	"github.com/poiesic/petindex/config"
	"github.com/poiesic/petindex/search"
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	slog.SetDefault(slog.New(handler))
}

// traceMonitor prints each search step.
type traceMonitor struct {
	w io.Writer
}

func (m *traceMonitor) Start(query string, mode search.Mode) {
	fmt.Fprintf(m.w, "query %q (%s)\n", query, mode)
}

func (m *traceMonitor) AfterEmbedding(dims int) {
	fmt.Fprintf(m.w, "embedded query: %d dims\n", dims)
}

func (m *traceMonitor) Fallback(reason error) {
	fmt.Fprintf(m.w, "scanning documents: %v\n", reason)
}

func (m *traceMonitor) AfterQuery(hits int) {
	fmt.Fprintf(m.w, "engine returned %d hits\n", hits)
}

func (m *traceMonitor) Finish(results []*search.Result) {}

func main() {
	cfg := config.DefaultConfig()
	if path := os.Getenv("PETINDEX_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}

	p, err := petindex.NewPipeline(cfg)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	searcher, err := p.NewSearcher()
	if err != nil {
		panic(err)
	}

	mode := search.ModeText
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "-semantic" {
		mode = search.ModeSemantic
		args = args[1:]
	}
	query := "playful kitten"
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}

	ctx := context.Background()
	results, err := searcher.SearchWithMonitor(ctx, query, mode, 0, &traceMonitor{w: os.Stderr})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d pets\n", len(results))
	for i, r := range results {
		fmt.Printf("%d: %s '%s' %s/%s [%0.3f]\n   %s\n", i, r.PetID, r.Name, r.Type, r.Color, r.Score, r.Description)
	}
}
