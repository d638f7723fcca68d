package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/audit"
	"github.com/amosWeiskopf/seosmith/pkg/engines/serp"
	"github.com/amosWeiskopf/seosmith/pkg/report"
	"github.com/amosWeiskopf/seosmith/pkg/tracker"
)

var auditCmd = &cobra.Command{
	Use:   "audit [URL]",
	Short: "Run the SEO+GEO check battery against a URL or all sites",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		skipSpeed, _ := cmd.Flags().GetBool("skip-speed")
		auditor := audit.New(fetchClient(cfg), cfg.Audit.MaxLinks)

		if len(args) == 1 {
			result := auditor.Run(args[0], audit.Options{SkipSpeed: skipSpeed})
			fmt.Print(report.Audit(result))
			return nil
		}

		// Batch mode skips PageSpeed regardless, it dominates runtime.
		for _, s := range cfg.Sites {
			result := auditor.Run(s.URL, audit.Options{SkipSpeed: true, SkipContent: true})
			fmt.Print(report.Audit(result))
		}
		return nil
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch [SITE]",
	Short: "Onboard a site: register everywhere, submit sitemap, ping, audit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		site, ok := cfg.SiteByName(args[0])
		if !ok {
			return fmt.Errorf("site %q not in config", args[0])
		}

		fmt.Printf("\n--- Launching %s (%s) ---\n", site.Name, site.URL)

		if set.GSC != nil {
			step("Google Search Console", set.GSC.AddSite(site.URL+"/"))
			if property, err := set.GSC.ResolveProperty(site.URL); err == nil {
				step("Google sitemap", set.GSC.SubmitSitemap(property, site.Sitemap))
			} else {
				step("Google sitemap", err)
			}
		}
		if set.Bing != nil {
			step("Bing Webmaster Tools", set.Bing.AddSite(site.URL))
			step("Bing sitemap", set.Bing.SubmitSitemap(site.URL, site.Sitemap))
		}
		if set.Yandex != nil {
			if uid, err := set.Yandex.UserID(); err != nil {
				step("Yandex Webmaster", err)
			} else {
				step("Yandex Webmaster", set.Yandex.AddHost(uid, site.URL))
				if hostID, err := set.Yandex.HostID(uid, site.URL); err == nil {
					step("Yandex sitemap", set.Yandex.SubmitSitemap(uid, hostID, site.Sitemap))
				}
			}
		}
		if set.IndexNow != nil {
			result, err := set.IndexNow.SubmitSitemap(site.URL, site.Sitemap)
			if err == nil && !result.OK {
				err = fmt.Errorf("HTTP %d", result.Status)
			}
			step("IndexNow ping", err)
		}

		auditor := audit.New(fetchClient(cfg), cfg.Audit.MaxLinks)
		result := auditor.Run(site.URL, audit.Options{SkipSpeed: true})
		fmt.Print(report.Audit(result))
		return nil
	},
}

func step(name string, err error) {
	if err != nil {
		fmt.Printf("  x  %-25s %v\n", name, err)
	} else {
		fmt.Printf("  OK %-25s\n", name)
	}
}

var competitorsCmd = &cobra.Command{
	Use:   "competitors [QUERY]",
	Short: "Analyze the SEO surface of pages ranking for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		num, _ := cmd.Flags().GetInt("num")

		results := set.Serp.Search(args[0], num)
		if len(results) == 0 {
			fmt.Println("No search results (SearXNG down and no CSE key?)")
			return nil
		}

		fmt.Printf("\n--- Competitors for %q ---\n", args[0])
		client := fetchClient(cfg)
		pages := make([]models.CompetitorPage, 0, len(results))
		for _, r := range results {
			pages = append(pages, serp.ExtractPageSEO(client, r.URL))
		}
		fmt.Print(report.Competitors(pages))
		fmt.Println()
		return nil
	},
}

var improveCmd = &cobra.Command{
	Use:   "improve [URL]",
	Short: "Track audit failures over time as prioritized issues",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		history, _ := cmd.Flags().GetBool("history")

		sites := cfg.Sites
		if len(args) == 1 {
			site, ok := cfg.SiteForURL(args[0])
			if !ok {
				site, ok = cfg.SiteByName(args[0])
			}
			if !ok {
				return fmt.Errorf("no configured site matches %q", args[0])
			}
			sites = []config.Site{site}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		state, err := store.LoadIssues()
		if err != nil {
			return err
		}

		if history {
			for _, s := range sites {
				fixed := tracker.FixedIssues(state, s.Name)
				fmt.Print(report.FixedHistory(s.Name, fixed, state))
			}
			fmt.Println()
			return nil
		}

		auditor := audit.New(fetchClient(cfg), cfg.Audit.MaxLinks)
		now := time.Now()
		for _, s := range sites {
			result := auditor.Run(s.URL, audit.Options{SkipSpeed: true, SkipContent: true})
			var failing []models.Check
			for _, c := range result.Checks {
				if !c.OK {
					failing = append(failing, c)
				}
			}
			issues := tracker.UpdateIssues(state, s.Name, failing, now)
			fmt.Print(report.Issues(s.Name, issues))
		}

		if err := store.SaveIssues(state); err != nil {
			return fmt.Errorf("saving issue store: %w", err)
		}
		fmt.Println()
		return nil
	},
}
