package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/engines"
	"github.com/amosWeiskopf/seosmith/pkg/engines/indexing"
	"github.com/amosWeiskopf/seosmith/pkg/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registered sites in each engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}

		rule := strings.Repeat("=", 60)
		fmt.Printf("\n%s\n  seosmith — %d sites configured\n%s\n", rule, len(cfg.Sites), rule)
		for _, s := range cfg.Sites {
			fmt.Printf("\n  %-20s %s\n", s.Name, s.URL)
		}

		fmt.Printf("\n--- Google Search Console ---\n")
		if set.GSC != nil {
			sites, err := set.GSC.ListSites()
			switch {
			case err != nil:
				fmt.Printf("  ERROR: %v\n", err)
			case len(sites) == 0:
				fmt.Println("  (no sites — add service account email as Owner in Search Console)")
			default:
				for _, s := range sites {
					fmt.Printf("  %-40s level=%s\n", s.SiteURL, s.PermissionLevel)
				}
			}
		} else {
			fmt.Println(notConfigured)
		}

		fmt.Printf("\n--- Bing Webmaster Tools ---\n")
		if set.Bing != nil {
			sites, err := set.Bing.ListSites()
			switch {
			case err != nil:
				fmt.Printf("  ERROR: %v\n", err)
			case len(sites) == 0:
				fmt.Println("  (no sites)")
			default:
				for _, s := range sites {
					fmt.Printf("  %s\n", s.URL)
				}
			}
		} else {
			fmt.Println(notConfigured)
		}

		fmt.Printf("\n--- Yandex Webmaster ---\n")
		if set.Yandex != nil {
			if err := printYandexHosts(set); err != nil {
				fmt.Printf("  ERROR: %v\n", err)
			}
		} else {
			fmt.Println(notConfigured)
		}

		fmt.Printf("\n--- IndexNow ---\n")
		if set.IndexNow != nil {
			key := cfg.IndexNow.Key
			prefix := key
			if len(prefix) > 8 {
				prefix = prefix[:8]
			}
			fmt.Printf("  Key: %s...\n", prefix)
			for _, s := range cfg.Sites {
				fmt.Printf("  Key file needed: %s/%s.txt\n", s.URL, key)
			}
		} else {
			fmt.Println(notConfigured)
		}

		fmt.Printf("\n--- Cloudflare ---\n")
		if set.Cloudflare != nil {
			zones, err := set.Cloudflare.ListZones()
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
			} else {
				for _, z := range zones {
					fmt.Printf("  %-40s [%s, %s plan]\n", z.Name, z.Status, z.Plan)
				}
			}
		} else {
			fmt.Println(notConfigured)
		}

		fmt.Println()
		return nil
	},
}

func printYandexHosts(set *engines.Set) error {
	uid, err := set.Yandex.UserID()
	if err != nil {
		return err
	}
	hosts, err := set.Yandex.ListHosts(uid)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		fmt.Println("  (no sites)")
		return nil
	}
	for _, h := range hosts {
		tag := "NOT verified"
		if h.Verified {
			tag = "verified"
		}
		fmt.Printf("  %-40s [%s]\n", h.UnicodeHostURL, tag)
	}
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add all configured sites to all engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}

		if set.GSC != nil {
			fmt.Printf("\n--- Adding to Google Search Console ---\n")
			for _, s := range cfg.Sites {
				if err := set.GSC.AddSite(s.URL + "/"); err != nil {
					fmt.Printf("  x %-20s %v\n", s.Name, err)
				} else {
					fmt.Printf("  + %-20s %s\n", s.Name, s.URL)
				}
			}
		}

		if set.Bing != nil {
			fmt.Printf("\n--- Adding to Bing Webmaster Tools ---\n")
			for _, s := range cfg.Sites {
				if err := set.Bing.AddSite(s.URL); err != nil {
					fmt.Printf("  x %-20s %v\n", s.Name, err)
				} else {
					fmt.Printf("  + %-20s %s\n", s.Name, s.URL)
				}
			}
		}

		if set.Yandex != nil {
			fmt.Printf("\n--- Adding to Yandex Webmaster ---\n")
			uid, err := set.Yandex.UserID()
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
			} else {
				for _, s := range cfg.Sites {
					if err := set.Yandex.AddHost(uid, s.URL); err != nil {
						fmt.Printf("  x %-20s %v\n", s.Name, err)
					} else {
						fmt.Printf("  + %-20s %s\n", s.Name, s.URL)
					}
				}
			}
		}

		fmt.Println()
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit sitemaps to all engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}

		if set.GSC != nil {
			fmt.Printf("\n--- Submitting sitemaps to Google ---\n")
			for _, s := range cfg.Sites {
				property, err := set.GSC.ResolveProperty(s.URL)
				if err != nil {
					fmt.Printf("  -  %-20s (not in GSC)\n", s.Name)
					continue
				}
				if err := set.GSC.SubmitSitemap(property, s.Sitemap); err != nil {
					fmt.Printf("  x  %-20s %v\n", s.Name, err)
				} else {
					fmt.Printf("  OK %-20s %s\n", s.Name, s.Sitemap)
				}
			}
		}

		if set.Bing != nil {
			fmt.Printf("\n--- Submitting sitemaps to Bing ---\n")
			for _, s := range cfg.Sites {
				if err := set.Bing.SubmitSitemap(s.URL, s.Sitemap); err != nil {
					fmt.Printf("  x  %-20s %v\n", s.Name, err)
				} else {
					fmt.Printf("  OK %-20s %s\n", s.Name, s.Sitemap)
				}
			}
		}

		if set.Yandex != nil {
			fmt.Printf("\n--- Submitting sitemaps to Yandex ---\n")
			uid, err := set.Yandex.UserID()
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
			} else {
				for _, s := range cfg.Sites {
					hostID, err := set.Yandex.HostID(uid, s.URL)
					if err != nil {
						fmt.Printf("  x  %-20s site not found in Yandex (run 'add' first)\n", s.Name)
						continue
					}
					if err := set.Yandex.SubmitSitemap(uid, hostID, s.Sitemap); err != nil {
						fmt.Printf("  x  %-20s %v\n", s.Name, err)
					} else {
						fmt.Printf("  OK %-20s %s\n", s.Name, s.Sitemap)
					}
				}
			}
		}

		fmt.Println()
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Submit all sitemap URLs via IndexNow",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.IndexNow == nil {
			fmt.Println("IndexNow not configured. Set 'indexnow.key' in config.yaml")
			return nil
		}

		fmt.Printf("\n--- IndexNow: submitting sitemap URLs ---\n")
		for _, s := range cfg.Sites {
			result, err := set.IndexNow.SubmitSitemap(s.URL, s.Sitemap)
			switch {
			case err != nil:
				fmt.Printf("  x  %-20s %v\n", s.Name, err)
			case result.OK:
				fmt.Printf("  OK %-20s %d URLs submitted\n", s.Name, result.URLCount)
			default:
				fmt.Printf("  x  %-20s HTTP %d\n", s.Name, result.Status)
			}
		}
		fmt.Println()
		return nil
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Search analytics from Google and Yandex (last 28 days)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		start, end := dateWindow(28)

		if set.GSC != nil {
			fmt.Printf("\n--- Google Search Analytics (%s — %s) ---\n", start, end)
			for _, s := range cfg.Sites {
				property, err := set.GSC.ResolveProperty(s.URL)
				if err != nil {
					fmt.Printf("  - %-20s (not in GSC)\n", s.Name)
					continue
				}
				rows, err := set.GSC.SearchAnalytics(property, start, end, nil)
				if err != nil {
					fmt.Printf("  x %-20s %v\n", s.Name, err)
					continue
				}
				clicks, impressions := sumRows(rows)
				fmt.Printf("\n  %s — %.0f clicks, %.0f impressions\n", s.Name, clicks, impressions)
				fmt.Print(report.SearchRows(rows, 5))
			}
		}

		if set.Yandex != nil {
			fmt.Printf("\n--- Yandex Search Queries (%s — %s) ---\n", start, end)
			uid, err := set.Yandex.UserID()
			if err != nil {
				fmt.Printf("  ERROR: %v\n", err)
			} else {
				for _, s := range cfg.Sites {
					hostID, err := set.Yandex.HostID(uid, s.URL)
					if err != nil {
						fmt.Printf("  x %-20s not found in Yandex\n", s.Name)
						continue
					}
					queries, err := set.Yandex.SearchQueries(uid, hostID, start, end)
					if err != nil {
						fmt.Printf("  x %-20s %v\n", s.Name, err)
						continue
					}
					fmt.Printf("\n  %s — %d queries\n", s.Name, len(queries))
					for i, q := range queries {
						if i >= 5 {
							break
						}
						fmt.Printf("    %-40s clicks=%d\n", q.QueryText, q.Count)
					}
				}
			}
		}

		fmt.Println()
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [URL]",
	Short: "Check the Google indexing status of a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := args[0]
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.GSC == nil {
			fmt.Println("Google not configured.")
			return nil
		}

		site, ok := cfg.SiteForURL(pageURL)
		if !ok {
			return fmt.Errorf("URL %s does not match any configured site", pageURL)
		}
		property, err := set.GSC.ResolveProperty(site.URL)
		if err != nil {
			return fmt.Errorf("site %s not found in GSC: %w", site.Name, err)
		}

		fmt.Printf("\n--- Google URL Inspection ---\n")
		fmt.Printf("  URL: %s\n", pageURL)
		result, err := set.GSC.InspectURL(property, pageURL)
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			return nil
		}
		idx := result.IndexStatusResult
		fmt.Printf("  Coverage:   %s\n", orUnknown(idx.CoverageState))
		fmt.Printf("  Robots:     %s\n", orUnknown(idx.RobotsTxtState))
		fmt.Printf("  Indexing:   %s\n", orUnknown(idx.IndexingState))
		fmt.Printf("  Last crawl: %s\n", orUnknown(idx.LastCrawlTime))
		fmt.Printf("  Page fetch: %s\n", orUnknown(idx.PageFetchState))
		fmt.Println()
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [URL]",
	Short: "Request instant reindexing via Google Indexing API and IndexNow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := args[0]
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}

		if set.Indexing != nil {
			fmt.Printf("\n--- Google Indexing API ---\n")
			meta, err := set.Indexing.PublishURL(pageURL, indexing.ActionUpdated)
			if err != nil {
				fmt.Printf("  x   %v\n", err)
			} else {
				fmt.Printf("  OK  %s\n", pageURL)
				if meta.LatestUpdate != nil {
					fmt.Printf("  Notified: %s\n", orUnknown(meta.LatestUpdate.NotifyTime))
				}
			}
		}

		if set.IndexNow != nil {
			if site, ok := cfg.SiteForURL(pageURL); ok {
				fmt.Printf("\n--- IndexNow ---\n")
				result, err := set.IndexNow.SubmitURLs(site.URL, []string{pageURL})
				switch {
				case err != nil:
					fmt.Printf("  x   %v\n", err)
				case result.OK:
					fmt.Printf("  OK  %s\n", pageURL)
				default:
					fmt.Printf("  x   HTTP %d\n", result.Status)
				}
			}
		}

		fmt.Println()
		return nil
	},
}

// opportunity is one low-CTR query: ranking impressions without clicks.
type opportunity struct {
	site        string
	query       string
	impressions float64
	clicks      float64
	position    float64
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "One-page SEO report across all sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		start, end := dateWindow(28)
		rule := strings.Repeat("=", 70)

		fmt.Printf("\n%s\n  SEO REPORT — %s to %s\n%s\n", rule, start, end, rule)

		var totalClicks, totalImpressions float64
		var opportunities []opportunity

		if set.GSC != nil {
			for _, s := range cfg.Sites {
				property, err := set.GSC.ResolveProperty(s.URL)
				if err != nil {
					fmt.Printf("\n  %-20s — not in GSC\n", s.Name)
					continue
				}

				rows, err := set.GSC.SearchAnalytics(property, start, end, nil)
				if err != nil {
					fmt.Printf("\n  %-20s — analytics error: %v\n", s.Name, err)
				} else {
					clicks, impressions := sumRows(rows)
					totalClicks += clicks
					totalImpressions += impressions

					avgPos := 0.0
					if impressions > 0 {
						for _, r := range rows {
							avgPos += r.Position * r.Impressions
						}
						avgPos /= impressions
					}

					fmt.Printf("\n  %s\n", s.Name)
					fmt.Printf("    Clicks: %.0f  |  Impressions: %.0f  |  Avg pos: %.1f\n",
						clicks, impressions, avgPos)

					if len(rows) > 0 {
						byClicks := make([]models.SearchRow, len(rows))
						copy(byClicks, rows)
						sort.SliceStable(byClicks, func(i, j int) bool {
							return byClicks[i].Clicks > byClicks[j].Clicks
						})
						fmt.Printf("    Top queries:\n")
						fmt.Print(report.SearchRows(byClicks, 3))
					}

					for _, r := range rows {
						if r.Impressions >= 50 && r.Clicks/r.Impressions < 0.02 {
							query := ""
							if len(r.Keys) > 0 {
								query = r.Keys[0]
							}
							opportunities = append(opportunities, opportunity{
								site:        s.Name,
								query:       query,
								impressions: r.Impressions,
								clicks:      r.Clicks,
								position:    r.Position,
							})
						}
					}
				}

				sitemaps, err := set.GSC.ListSitemaps(property)
				if err == nil {
					if len(sitemaps) == 0 {
						fmt.Printf("    Sitemap: not submitted to Google\n")
					}
					for _, sm := range sitemaps {
						if sm.Errors != "" && sm.Errors != "0" || sm.Warnings != "" && sm.Warnings != "0" {
							fmt.Printf("    Sitemap issue: %s — %s errors, %s warnings\n",
								sm.Path, sm.Errors, sm.Warnings)
						}
					}
				}
			}
		}

		if set.IndexNow != nil {
			key := cfg.IndexNow.Key
			client := fetchClient(cfg)
			fmt.Printf("\n  --- IndexNow key verification ---\n")
			for _, s := range cfg.Sites {
				keyURL := fmt.Sprintf("%s/%s.txt", s.URL, key)
				res, err := client.Get(keyURL)
				switch {
				case err != nil:
					fmt.Printf("    %-20s UNREACHABLE\n", s.Name)
				case res.Status == 200 && strings.Contains(res.Body, key):
					fmt.Printf("    %-20s OK\n", s.Name)
				default:
					fmt.Printf("    %-20s MISSING (HTTP %d)\n", s.Name, res.Status)
				}
			}
		}

		fmt.Printf("\n%s\n  TOTALS: %.0f clicks  |  %.0f impressions\n%s\n",
			rule, totalClicks, totalImpressions, rule)

		if len(opportunities) > 0 {
			sort.SliceStable(opportunities, func(i, j int) bool {
				return opportunities[i].impressions > opportunities[j].impressions
			})
			fmt.Printf("\n  LOW-CTR OPPORTUNITIES (high impressions, low clicks):\n")
			for i, opp := range opportunities {
				if i >= 10 {
					break
				}
				ctr := opp.clicks / opp.impressions * 100
				fmt.Printf("    [%-15s] %-30s imp=%5.0f  ctr=%.1f%%  pos=%.1f\n",
					opp.site, opp.query, opp.impressions, ctr, opp.position)
			}
		}

		fmt.Println()
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare GSC performance against the previous 28-day window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, set, err := loadEngines(cmd)
		if err != nil {
			return err
		}
		if set.GSC == nil {
			fmt.Println("Google not configured.")
			return nil
		}

		currStart, currEnd := dateWindow(28)
		prevStart, _ := dateWindow(56)
		prevEnd := currStart

		fmt.Printf("\n--- GSC comparison: %s..%s vs %s..%s ---\n",
			prevStart, prevEnd, currStart, currEnd)

		for _, s := range cfg.Sites {
			property, err := set.GSC.ResolveProperty(s.URL)
			if err != nil {
				fmt.Printf("  - %-20s (not in GSC)\n", s.Name)
				continue
			}
			prevRows, err := set.GSC.SearchAnalytics(property, prevStart, prevEnd, nil)
			if err != nil {
				fmt.Printf("  x %-20s %v\n", s.Name, err)
				continue
			}
			currRows, err := set.GSC.SearchAnalytics(property, currStart, currEnd, nil)
			if err != nil {
				fmt.Printf("  x %-20s %v\n", s.Name, err)
				continue
			}

			prevClicks, prevImp := sumRows(prevRows)
			currClicks, currImp := sumRows(currRows)
			fmt.Printf("  %-20s clicks %.0f -> %.0f (%+.0f)  impressions %.0f -> %.0f (%+.0f)\n",
				s.Name, prevClicks, currClicks, currClicks-prevClicks,
				prevImp, currImp, currImp-prevImp)
		}

		fmt.Println()
		return nil
	},
}

func sumRows(rows []models.SearchRow) (clicks, impressions float64) {
	for _, r := range rows {
		clicks += r.Clicks
		impressions += r.Impressions
	}
	return clicks, impressions
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
