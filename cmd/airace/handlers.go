package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/elonfeng/airace/internal/config"
	"github.com/elonfeng/airace/internal/export"
	"github.com/elonfeng/airace/internal/history"
	"github.com/elonfeng/airace/pkg/leaderboard"
	"github.com/elonfeng/airace/pkg/news"
	"github.com/elonfeng/airace/pkg/rank"
)

type scrapeOptions struct {
	Basic       bool
	Full        bool
	Enrich      bool
	Persist     bool
	MaxColWidth int
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func runLogger() *logrus.Entry {
	return logrus.WithField("run_id", uuid.NewString())
}

func buildGroups(cfg *config.Config) []leaderboard.Group {
	groups := make([]leaderboard.Group, len(cfg.Source.Groups))
	for i, g := range cfg.Source.Groups {
		groups[i] = leaderboard.Group{
			Code:  g.Code,
			URL:   g.ResolvedURL(cfg.Source.BaseURL),
			Limit: g.Limit,
		}
	}
	return groups
}

func buildRetry(cfg *config.Config) leaderboard.RetryPolicy {
	return leaderboard.RetryPolicy{
		MaxAttempts: cfg.Retry.Attempts,
		BaseDelay:   cfg.Retry.ParseBackoffBase(),
		MaxDelay:    cfg.Retry.ParseBackoffMax(),
	}
}

func buildWeights(cfg *config.Config) rank.Weights {
	return rank.Weights{
		Capability: cfg.Scoring.CapabilityWeight,
		Value:      cfg.Scoring.ValueWeight,
		InputCost:  cfg.Scoring.InputCostWeight,
		OutputCost: cfg.Scoring.OutputCostWeight,
		Missing:    rank.MissingPolicy(cfg.Scoring.MissingBenchmark),
	}
}

func runScrape(ctx context.Context, opts scrapeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.MaxColWidth <= 0 {
		opts.MaxColWidth = cfg.Output.MaxColWidth
	}
	// Enrichment runs are the persisting runs, like the original staged
	// scraper's stage 3.
	if opts.Enrich {
		opts.Persist = true
	}

	log := runLogger()
	extractor := leaderboard.NewExtractor(buildRetry(cfg), log)

	models, benchmarks, err := extractor.Extract(ctx, buildGroups(cfg))
	if err != nil {
		return fmt.Errorf("extract leaderboard: %w", err)
	}

	if opts.Basic {
		fmt.Println(renderBasicTable(models, opts.MaxColWidth))
		return nil
	}

	if opts.Enrich {
		extractor.Enrich(ctx, models)
	}

	weights := buildWeights(cfg)
	cohort := rank.Normalize(models, benchmarks)
	scored := rank.Compose(models, cohort, weights)

	validator := rank.Validator{Weights: weights}
	if cfg.Validation.EnforceComposition {
		validator.ExpectedPerGroup = make(map[string]int)
		for _, g := range cfg.Source.Groups {
			validator.ExpectedPerGroup[g.Code] = g.Limit
		}
	}
	if err := validator.Validate(models, benchmarks, scored); err != nil {
		return fmt.Errorf("validation failed, nothing persisted: %w", err)
	}

	fmt.Println(renderScoredTable(scored, opts.MaxColWidth))
	fmt.Println(renderAggregatesTable(export.Aggregate(scored)))

	if err := writeExports(ctx, cfg, log, cohort.Benchmarks, scored); err != nil {
		return err
	}

	if opts.Persist {
		entry := history.NewEntry(time.Now(), cohort.Benchmarks, scored)
		writer := history.NewWriter(cfg.Output.HistoryPath, log)
		if err := writer.Append(entry); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "history entry %s appended (%d models)\n", entry.Timestamp, len(entry.Models))
	}

	return nil
}

func writeExports(ctx context.Context, cfg *config.Config, log *logrus.Entry, benchmarks []string, scored []rank.ScoredModel) error {
	if cfg.Output.CombinedCSV != "" {
		if err := export.WriteCombinedCSV(cfg.Output.CombinedCSV, benchmarks, scored); err != nil {
			return fmt.Errorf("write combined csv: %w", err)
		}
	}
	if cfg.Output.AggregatesCSV != "" {
		if err := export.WriteAggregatesCSV(cfg.Output.AggregatesCSV, scored); err != nil {
			return fmt.Errorf("write aggregates csv: %w", err)
		}
	}

	if cfg.Output.ArchivePath != "" {
		archive, err := export.OpenArchive(cfg.Output.ArchivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer archive.Close()

		runID := uuid.NewString()
		if err := archive.RecordRun(ctx, runID, time.Now(), benchmarks, scored); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		log.WithField("archive_run", runID).Info("recorded run in archive")
	}
	return nil
}

func runNews(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := runLogger()

	feeds := make([]news.Feed, len(cfg.News.Feeds))
	for i, f := range cfg.News.Feeds {
		feeds[i] = news.Feed{Name: f.Name, URL: f.URL}
	}

	collector := news.NewCollector(feeds, log)
	fresh := collector.Collect(ctx)
	if len(fresh) == 0 {
		fmt.Fprintln(os.Stderr, "no articles fetched; keeping existing news file")
		return nil
	}

	existing, err := news.Load(cfg.News.Path)
	if err != nil {
		return fmt.Errorf("load news: %w", err)
	}

	merged := news.Merge(fresh, existing.Items)
	if err := news.Save(cfg.News.Path, merged, time.Now()); err != nil {
		return fmt.Errorf("save news: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wrote %d articles to %s\n", len(merged), cfg.News.Path)
	return nil
}
