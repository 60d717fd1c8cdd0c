package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/petindex"
	"github.com/poiesic/petindex/reembed"
	"github.com/poiesic/petindex/search"
	"github.com/urfave/cli/v2"
)

// openPipeline builds a pipeline from the config file and flags.
func openPipeline(c *cli.Context) (*petindex.Pipeline, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	var opts []petindex.Option
	if n := c.Int("progress"); n > 0 {
		opts = append(opts, petindex.WithProgress(os.Stderr, n))
	}
	return petindex.NewPipeline(cfg, opts...)
}

func runCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := p.Run(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Run %s\n", report.RunID)
	fmt.Fprintf(w, "Normalized: %d records (%d rows, %d duplicates, %d invalid)\n",
		len(report.Normalize.Records), report.Normalize.RawRows, report.Normalize.Duplicates, report.Normalize.Invalid)
	fmt.Fprintf(w, "Built: %d documents (%d unchanged, %d skipped)\n",
		report.Build.Written, report.Build.Unchanged, report.Build.Skipped)
	printLoad(c, report.Load.Submitted, report.Load.Indexed, report.Load.Failed, report.IndexCreated)
	fmt.Fprintf(w, "Elapsed: %s\n", report.Elapsed.Round(time.Millisecond))
	return report.Load.Err()
}

func normalizeCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.Normalize(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Normalized: %d records (%d rows, %d duplicates, %d invalid)\n",
		len(result.Records), result.RawRows, result.Duplicates, result.Invalid)
	if result.SnapshotPath != "" {
		fmt.Fprintf(c.App.Writer, "Snapshot: %s\n", result.SnapshotPath)
	}
	return nil
}

func buildCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.BuildFromSnapshot(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Built: %d documents (%d unchanged, %d skipped) in %s\n",
		result.Written, result.Unchanged, result.Skipped, result.Elapsed.Round(time.Millisecond))
	for _, f := range result.Failures {
		fmt.Fprintf(c.App.Writer, "  skipped %s: %v\n", f.PetID, f.Err)
	}
	return nil
}

func loadCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	stats, created, err := p.Load(c.Context)
	if err != nil {
		return err
	}
	printLoad(c, stats.Submitted, stats.Indexed, stats.Failed, created)
	for _, f := range stats.Failures {
		fmt.Fprintf(c.App.Writer, "  rejected %s: %s\n", f.PetID, f.Reason)
	}
	return stats.Err()
}

func printLoad(c *cli.Context, submitted, indexed, failed int, created bool) {
	state := "existing"
	if created {
		state = "created"
	}
	fmt.Fprintf(c.App.Writer, "Loaded: %d submitted, %d indexed, %d failed (index %s)\n",
		submitted, indexed, failed, state)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a search query is required")
	}
	mode, err := search.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	searcher, err := p.NewSearcher()
	if err != nil {
		return err
	}
	results, err := searcher.SearchWithMonitor(c.Context, query, mode, c.Int("size"), nil)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Fprintf(c.App.Writer, "Found %d pets\n", len(results))
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%2d. %s %s (%s, %s) [%0.3f]\n    %s\n    %s\n",
			i+1, r.PetID, displayName(r.Name), r.Type, r.Color, r.Score, r.Description, r.Image)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "(no name)"
	}
	return name
}

func reembedCommand(c *cli.Context) error {
	cfg := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Fprintf(os.Stderr, "Documents: %s %s\n", p.Config().Documents.Backend, p.Config().Documents.Dir)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", p.Config().Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", p.Config().Embedding.Model)
	fmt.Fprintln(os.Stderr)

	result, err := p.NewReembedder(cfg, os.Stderr).Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Reembedded: %d documents (%d changed)\n", result.Processed, result.Changed)
	return nil
}

func configCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		return cfg.Save(out)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}
