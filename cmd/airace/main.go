package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "airace",
		Short: "Track the US-China frontier model race from the public LLM leaderboard",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(scrapeCmd())
	root.AddCommand(newsCmd())

	return root
}

func scrapeCmd() *cobra.Command {
	var opts scrapeOptions

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract the leaderboard, derive rankings, and optionally persist a history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Basic, "basic", false, "extract identity and raw columns only, no derived scores")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "extract and derive scores (the default mode)")
	cmd.Flags().BoolVar(&opts.Enrich, "enrich", false, "fetch per-model detail pages for description metadata")
	cmd.Flags().BoolVar(&opts.Persist, "persist", false, "append the validated run to the history log")
	cmd.Flags().IntVar(&opts.MaxColWidth, "max-col-width", 0, "max console column width (default: from config)")
	cmd.MarkFlagsMutuallyExclusive("basic", "full")
	return cmd
}

func newsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Refresh news.json from the configured AI news feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNews(cmd.Context())
		},
	}
	return cmd
}
