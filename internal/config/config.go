package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Retry      RetryConfig      `yaml:"retry"`
	Output     OutputConfig     `yaml:"output"`
	Validation ValidationConfig `yaml:"validation"`
	News       NewsConfig       `yaml:"news"`
}

// SourceConfig selects the upstream leaderboard and the origin groups to
// extract from it.
type SourceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Groups  []GroupConfig `yaml:"groups"`
}

// GroupConfig is one origin-filtered leaderboard slice.
type GroupConfig struct {
	Code  string `yaml:"code"`
	URL   string `yaml:"url"` // optional; defaults to base_url?country=code
	Limit int    `yaml:"limit"`
}

// ResolvedURL returns the group's leaderboard URL.
func (g GroupConfig) ResolvedURL(baseURL string) string {
	if g.URL != "" {
		return g.URL
	}
	return fmt.Sprintf("%s?country=%s", baseURL, g.Code)
}

// ScoringConfig holds the run-wide scoring constants. These have changed
// across releases of the methodology, so none of them are hardcoded.
type ScoringConfig struct {
	CapabilityWeight float64 `yaml:"capability_weight"`
	ValueWeight      float64 `yaml:"value_weight"`
	InputCostWeight  float64 `yaml:"input_cost_weight"`
	OutputCostWeight float64 `yaml:"output_cost_weight"`
	// MissingBenchmark is "exclude" or "zero"; see pkg/rank.
	MissingBenchmark string `yaml:"missing_benchmark"`
}

// RetryConfig bounds upstream fetch retries.
type RetryConfig struct {
	Attempts    int    `yaml:"attempts"`
	BackoffBase string `yaml:"backoff_base"`
	BackoffMax  string `yaml:"backoff_max"`
}

// ParseBackoffBase returns the backoff base as a duration.
func (r RetryConfig) ParseBackoffBase() time.Duration {
	d, err := time.ParseDuration(r.BackoffBase)
	if err != nil {
		return time.Second
	}
	return d
}

// ParseBackoffMax returns the backoff cap as a duration.
func (r RetryConfig) ParseBackoffMax() time.Duration {
	d, err := time.ParseDuration(r.BackoffMax)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// OutputConfig names the persisted log and the derived artifacts.
type OutputConfig struct {
	HistoryPath   string `yaml:"history_path"`
	ArchivePath   string `yaml:"archive_path"`
	CombinedCSV   string `yaml:"combined_csv"`
	AggregatesCSV string `yaml:"aggregates_csv"`
	MaxColWidth   int    `yaml:"max_col_width"`
}

// ValidationConfig controls the pre-persist structural checks.
type ValidationConfig struct {
	// EnforceComposition requires each configured group to contribute
	// exactly its limit of models.
	EnforceComposition bool `yaml:"enforce_composition"`
}

// NewsConfig configures the supplemental news collector.
type NewsConfig struct {
	Path  string       `yaml:"path"`
	Feeds []FeedConfig `yaml:"feeds"`
}

// FeedConfig is a single RSS/Atom feed entry.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL: "https://llm-stats.com/leaderboards/llm-leaderboard",
			Groups: []GroupConfig{
				{Code: "US", Limit: 10},
				{Code: "CN", Limit: 10},
			},
		},
		Scoring: ScoringConfig{
			CapabilityWeight: 0.7,
			ValueWeight:      0.3,
			InputCostWeight:  1.0,
			OutputCostWeight: 1.0,
			MissingBenchmark: "exclude",
		},
		Retry: RetryConfig{
			Attempts:    3,
			BackoffBase: "1s",
			BackoffMax:  "10s",
		},
		Output: OutputConfig{
			HistoryPath:   "models.json",
			ArchivePath:   "archive.db",
			CombinedCSV:   "combined.csv",
			AggregatesCSV: "aggregates.csv",
			MaxColWidth:   36,
		},
		Validation: ValidationConfig{EnforceComposition: true},
		News: NewsConfig{
			Path: "news.json",
			Feeds: []FeedConfig{
				{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
				{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
				{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/"},
			},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIRACE_SOURCE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("AIRACE_HISTORY_PATH"); v != "" {
		cfg.Output.HistoryPath = v
	}
	if v := os.Getenv("AIRACE_ARCHIVE_PATH"); v != "" {
		cfg.Output.ArchivePath = v
	}
	if v := os.Getenv("AIRACE_NEWS_PATH"); v != "" {
		cfg.News.Path = v
	}
}

func (c *Config) validate() error {
	if len(c.Source.Groups) == 0 {
		return fmt.Errorf("config: at least one source group is required")
	}
	w := c.Scoring.CapabilityWeight + c.Scoring.ValueWeight
	if w <= 0 {
		return fmt.Errorf("config: capability_weight + value_weight must be positive, got %g", w)
	}
	switch c.Scoring.MissingBenchmark {
	case "exclude", "zero":
	default:
		return fmt.Errorf("config: missing_benchmark must be \"exclude\" or \"zero\", got %q", c.Scoring.MissingBenchmark)
	}
	return nil
}
