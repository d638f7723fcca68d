package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/pkg/engines"
	"github.com/amosWeiskopf/seosmith/pkg/fetch"
	"github.com/amosWeiskopf/seosmith/pkg/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "seosmith",
	Short: "SeoSmith - unified SEO and GEO management for all your sites",
	Long: `SeoSmith manages your sites across Google, Bing, Yandex, IndexNow and
Cloudflare: sitemap submission, instant reindexing, search analytics,
SEO+GEO audits, keyword research and position monitoring.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

// loadConfig reads and validates the config named by --config (or the
// default search path).
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEngines builds the capability set for the configured credentials.
func loadEngines(cmd *cobra.Command) (*config.Config, *engines.Set, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	set, err := engines.Build(context.Background(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building engine clients: %w", err)
	}
	return cfg, set, nil
}

// fetchClient builds the shared HTTP fetcher with the configured user agent
// and timeouts.
func fetchClient(cfg *config.Config) *fetch.Client {
	ua := cfg.Audit.UserAgent
	if ua == "" {
		ua = fetch.DefaultUserAgent
	}
	return fetch.NewWithTimeouts(ua, cfg.Audit.FetchTimeout, cfg.Audit.LinkTimeout)
}

// openStore opens the snapshot store under the user config dir.
func openStore() (*storage.Store, error) {
	store, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	return store, nil
}

// dateWindow returns the inclusive YYYY-MM-DD range ending today and
// starting days ago.
func dateWindow(days int) (string, string) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

const notConfigured = "  (not configured)"

func init() {
	auditCmd.Flags().Bool("skip-speed", false, "Skip PageSpeed Insights calls")
	improveCmd.Flags().Bool("history", false, "Show fixed issue history instead of re-auditing")
	competitorsCmd.Flags().Int("num", 10, "Number of SERP results to analyze")
	keywordsCmd.Flags().Bool("expand", false, "Expand with question/comparison modifiers")
	gaCmd.Flags().Int("days", 28, "Reporting window in days")
	trafficCmd.Flags().Int("days", 7, "Reporting window in days")
	crawlersCmd.Flags().Int("days", 7, "Reporting window in days")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(competitorsCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(trafficCmd)
	rootCmd.AddCommand(crawlersCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(gaCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
