package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/report"
	"github.com/amosWeiskopf/seosmith/pkg/storage"
	"github.com/amosWeiskopf/seosmith/pkg/tracker"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Diff search positions against the previous snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.GSC == nil {
			fmt.Println("Google not configured.")
			return nil
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		state, err := store.LoadMonitor()
		if err != nil {
			return err
		}

		start, end := dateWindow(cfg.Monitor.WindowDays)
		threshold := cfg.Monitor.PositionThreshold

		for _, s := range cfg.Sites {
			property, err := set.GSC.ResolveProperty(s.URL)
			if err != nil {
				fmt.Printf("  - %-20s (not in GSC)\n", s.Name)
				continue
			}
			rows, err := set.GSC.SearchAnalytics(property, start, end, []string{"query"})
			if err != nil {
				fmt.Printf("  x %-20s %v\n", s.Name, err)
				continue
			}

			current := map[string]models.QueryStats{}
			for _, r := range rows {
				if len(r.Keys) == 0 {
					continue
				}
				current[r.Keys[0]] = models.QueryStats{
					Clicks:      int(r.Clicks),
					Impressions: int(r.Impressions),
					Position:    r.Position,
				}
			}

			prev := state.Sites[s.Name].Queries
			if len(prev) > 0 {
				diff := tracker.CompareSnapshots(prev, current, threshold)
				fmt.Print(report.MonitorDiff(s.Name, &diff, threshold))
			} else {
				fmt.Printf("\n  --- Position changes: %s ---\n", s.Name)
				fmt.Printf("  First snapshot recorded (%d queries), diff on next run.\n", len(current))
			}
			state.Sites[s.Name] = models.SiteSnapshot{Queries: current}
		}

		state.LastCheck = storage.Timestamp()
		if err := store.SaveMonitor(state); err != nil {
			return fmt.Errorf("saving monitor store: %w", err)
		}
		fmt.Println()
		return nil
	},
}

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Cloudflare traffic, bot split and error breakdown per zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.Cloudflare == nil {
			fmt.Println("Cloudflare not configured.")
			return nil
		}
		days, _ := cmd.Flags().GetInt("days")
		start, end := dateWindow(days)
		to := time.Now().UTC()
		from := to.AddDate(0, 0, -days)

		zones, err := set.Cloudflare.ListZones()
		if err != nil {
			return err
		}

		for _, zone := range zones {
			fmt.Printf("\n--- %s (%s plan) ---\n", zone.Name, zone.Plan)

			groups, err := set.Cloudflare.ZoneAnalytics(zone.ID, start, end)
			if err != nil {
				fmt.Printf("  analytics error: %v\n", err)
				continue
			}
			var requests, pageViews, uniques int64
			for _, g := range groups {
				requests += g.Requests
				pageViews += g.PageViews
				uniques += g.Uniques
			}
			fmt.Printf("  Requests: %d  |  Page views: %d  |  Uniques: %d\n",
				requests, pageViews, uniques)

			if split, err := set.Cloudflare.BotHumanSplit(zone.ID, from, to); err == nil && split.Total > 0 {
				humanPct := float64(split.Human) * 100 / float64(split.Total)
				fmt.Printf("  Human: %d (%.0f%%)  |  Bot: %d  [%s]\n",
					split.Human, humanPct, split.Total-split.Human, split.Method)
			}

			if errCounts, err := set.Cloudflare.ZoneErrors(zone.ID, start, end); err == nil {
				var shown int
				for _, ec := range errCounts {
					if ec.Status < 400 {
						continue
					}
					if shown == 0 {
						fmt.Printf("  Errors:")
					}
					fmt.Printf("  %d=%d", ec.Status, ec.Requests)
					shown++
					if shown >= 5 {
						break
					}
				}
				if shown > 0 {
					fmt.Println()
				}
			}

			if countries, err := set.Cloudflare.ZoneCountries(zone.ID, start, end); err == nil && len(countries) > 0 {
				fmt.Printf("  Top countries:")
				for i, c := range countries {
					if i >= 5 {
						break
					}
					fmt.Printf("  %s=%d", c.Country, c.Requests)
				}
				fmt.Println()
			}
		}

		fmt.Println()
		return nil
	},
}

var crawlersCmd = &cobra.Command{
	Use:   "crawlers",
	Short: "AI crawler activity and AI referral traffic per zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.Cloudflare == nil {
			fmt.Println("Cloudflare not configured.")
			return nil
		}
		days, _ := cmd.Flags().GetInt("days")
		to := time.Now().UTC()
		from := to.AddDate(0, 0, -days)

		zones, err := set.Cloudflare.ListZones()
		if err != nil {
			return err
		}

		for _, zone := range zones {
			fmt.Printf("\n--- AI crawlers: %s (last %d days) ---\n", zone.Name, days)

			stats, err := set.Cloudflare.AICrawlerStats(zone.ID, from, to)
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
				continue
			}
			if len(stats) == 0 {
				fmt.Println("  No AI crawler traffic.")
			}
			for _, st := range stats {
				fmt.Printf("  %-20s %6d requests  %s\n", st.Crawler, st.Requests, byteLabel(st.Bytes))
			}

			if refs, err := set.Cloudflare.AIReferralTraffic(zone.ID, from, to); err == nil && len(refs) > 0 {
				fmt.Printf("\n  AI referral traffic:\n")
				for _, ref := range refs {
					fmt.Printf("  %-25s %d visits\n", ref.Referrer, ref.Requests)
				}
			}

			if paths, err := set.Cloudflare.AITopPaths(zone.ID, from, to); err == nil && len(paths) > 0 {
				fmt.Printf("\n  Most crawled paths:\n")
				for i, p := range paths {
					if i >= 10 {
						break
					}
					fmt.Printf("  %-50s %d\n", p.Path, p.Requests)
				}
			}
		}

		fmt.Println()
		return nil
	},
}

func byteLabel(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords [QUERY]",
	Short: "Keyword suggestions from Google Autocomplete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		expand, _ := cmd.Flags().GetBool("expand")
		query := args[0]

		suggestions := set.Keywords.Autocomplete(query)
		fmt.Printf("\n--- Autocomplete: %q ---\n", query)
		if len(suggestions) == 0 {
			fmt.Println("  (no suggestions)")
		}
		for _, s := range suggestions {
			fmt.Printf("  %s\n", s)
		}

		if expand {
			expanded := set.Keywords.PeopleAlsoSearch(query)
			fmt.Printf("\n--- Expanded (how/why/what/vs/best/for) ---\n")
			for _, s := range expanded {
				fmt.Printf("  %s\n", s)
			}
		}

		fmt.Println()
		return nil
	},
}

var gaCmd = &cobra.Command{
	Use:   "ga",
	Short: "Google Analytics 4 overview for sites with a GA property",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.GA == nil {
			fmt.Println("Google not configured.")
			return nil
		}
		days, _ := cmd.Flags().GetInt("days")

		found := false
		for _, s := range cfg.Sites {
			if s.GAPropertyID == "" {
				continue
			}
			found = true
			hostname := hostOf(s.URL)

			fmt.Printf("\n--- GA4: %s (last %d days) ---\n", s.Name, days)
			overview, err := set.GA.GetOverview(s.GAPropertyID, days, hostname)
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
				continue
			}
			fmt.Printf("  Sessions: %d  |  Users: %d (%d new)  |  Pageviews: %d\n",
				overview.Sessions, overview.Users, overview.NewUsers, overview.Pageviews)
			fmt.Printf("  Avg duration: %.0fs  |  Bounce: %.0f%%  |  Engaged: %d\n",
				overview.AvgDuration, overview.BounceRate*100, overview.EngagedSessions)

			if pages, err := set.GA.GetTopPages(s.GAPropertyID, days, 5, hostname); err == nil && len(pages) > 0 {
				fmt.Printf("  Top pages:\n")
				for _, row := range pages {
					fmt.Printf("    %-40s views=%d\n",
						row.Get("pagePath"), row.GetInt("screenPageViews"))
				}
			}

			if channels, err := set.GA.GetChannels(s.GAPropertyID, days, hostname); err == nil && len(channels) > 0 {
				fmt.Printf("  Channels:\n")
				for _, row := range channels {
					fmt.Printf("    %-25s sessions=%d\n",
						row.Get("sessionDefaultChannelGroup"), row.GetInt("sessions"))
				}
			}

			if active, err := set.GA.GetRealtime(s.GAPropertyID); err == nil {
				fmt.Printf("  Active right now: %d\n", active)
			}
		}

		if !found {
			fmt.Println("No sites with ga_property_id configured.")
			if props, err := set.GA.ListProperties(); err == nil && len(props) > 0 {
				fmt.Println("Available properties:")
				for _, p := range props {
					fmt.Printf("  %-12s %s / %s\n", p.PropertyID, p.Account, p.Property)
				}
			}
		}

		fmt.Println()
		return nil
	},
}

func hostOf(siteURL string) string {
	host := siteURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}
