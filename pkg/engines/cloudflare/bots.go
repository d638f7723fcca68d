package cloudflare

import (
	"fmt"
	"sort"
	"time"
)

// BotSplit is the bot/human traffic breakdown of a zone. Method records
// which data source produced it: "botManagement" on Enterprise zones,
// "eyeball" everywhere else.
type BotSplit struct {
	Human       int64
	LikelyBot   int64
	Bot         int64
	VerifiedBot int64
	Total       int64
	Method      string
}

type countGroups []struct {
	Count int64 `json:"count"`
}

func (g countGroups) total() int64 {
	var sum int64
	for _, c := range g {
		sum += c.Count
	}
	return sum
}

// BotHumanSplit splits zone traffic into bot and human requests over a
// datetime range (RFC 3339). Bot Management decisions are tried first;
// zones without that product fall back to the requestSource=eyeball
// comparison, queried in 24-hour slices to fit free-plan limits.
func (c *Client) BotHumanSplit(zoneID string, from, to time.Time) (*BotSplit, error) {
	if split, err := c.botManagementSplit(zoneID, from, to); err == nil {
		return split, nil
	}
	return c.eyeballSplit(zoneID, from, to)
}

func (c *Client) botManagementSplit(zoneID string, from, to time.Time) (*BotSplit, error) {
	fromStr, toStr := rfc3339(from), rfc3339(to)
	decision := func(alias, value string) string {
		return fmt.Sprintf(`%s: httpRequestsAdaptiveGroups(
	        filter: { datetime_geq: "%s", datetime_leq: "%s", botManagementDecision: "%s" }
	        limit: 1
	      ) { count }`, alias, fromStr, toStr, value)
	}
	query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      %s
	      %s
	      %s
	      %s
	    }
	  }
	}`, zoneID,
		decision("human", "likely_human"),
		decision("likelyAuto", "likely_automated"),
		decision("automated", "automated"),
		decision("verified", "verified_bot"))

	var out struct {
		Viewer struct {
			Zones []struct {
				Human      countGroups `json:"human"`
				LikelyAuto countGroups `json:"likelyAuto"`
				Automated  countGroups `json:"automated"`
				Verified   countGroups `json:"verified"`
			} `json:"zones"`
		} `json:"viewer"`
	}
	if err := c.graphql(query, 20*time.Second, &out); err != nil {
		return nil, err
	}
	if len(out.Viewer.Zones) == 0 {
		return nil, fmt.Errorf("cloudflare: zone %s not visible", zoneID)
	}

	z := out.Viewer.Zones[0]
	split := &BotSplit{
		Human:       z.Human.total(),
		LikelyBot:   z.LikelyAuto.total(),
		Bot:         z.Automated.total(),
		VerifiedBot: z.Verified.total(),
		Method:      "botManagement",
	}
	split.Total = split.Human + split.LikelyBot + split.Bot + split.VerifiedBot
	return split, nil
}

func (c *Client) eyeballSplit(zoneID string, from, to time.Time) (*BotSplit, error) {
	var totalAll, totalEyeball int64

	for current := from; current.Before(to); {
		dayEnd := current.Add(24 * time.Hour)
		if dayEnd.After(to) {
			dayEnd = to
		}

		query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      total: httpRequestsAdaptiveGroups(
	        filter: { datetime_geq: "%s", datetime_leq: "%s" }
	        limit: 1
	      ) { count }
	      eyeball: httpRequestsAdaptiveGroups(
	        filter: { datetime_geq: "%s", datetime_leq: "%s", requestSource: "eyeball" }
	        limit: 1
	      ) { count }
	    }
	  }
	}`, zoneID, rfc3339(current), rfc3339(dayEnd), rfc3339(current), rfc3339(dayEnd))

		var out struct {
			Viewer struct {
				Zones []struct {
					Total   countGroups `json:"total"`
					Eyeball countGroups `json:"eyeball"`
				} `json:"zones"`
			} `json:"viewer"`
		}
		// Failed slices are skipped; the split covers what answered.
		if err := c.graphql(query, 15*time.Second, &out); err == nil && len(out.Viewer.Zones) > 0 {
			totalAll += out.Viewer.Zones[0].Total.total()
			totalEyeball += out.Viewer.Zones[0].Eyeball.total()
		}

		current = dayEnd
	}

	return &BotSplit{
		Human:  totalEyeball,
		Bot:    totalAll - totalEyeball,
		Total:  totalAll,
		Method: "eyeball",
	}, nil
}

// CrawlerStat is one AI crawler's activity in a zone.
type CrawlerStat struct {
	Crawler   string
	UAPattern string
	Requests  int64
	Bytes     int64
}

// AICrawlerStats queries each known AI crawler's request volume. Crawlers
// with no traffic are omitted; failed per-crawler queries are skipped.
func (c *Client) AICrawlerStats(zoneID string, from, to time.Time) ([]CrawlerStat, error) {
	var results []CrawlerStat
	for _, crawler := range AICrawlers {
		query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequestsAdaptiveGroups(
	        filter: {
	          datetime_geq: "%s"
	          datetime_leq: "%s"
	          requestSource: "eyeball"
	          userAgent_like: "%%%s%%"
	        }
	        limit: 1
	      ) {
	        count
	        sum { edgeResponseBytes }
	      }
	    }
	  }
	}`, zoneID, rfc3339(from), rfc3339(to), crawler.UAPattern)

		var out struct {
			Viewer struct {
				Zones []struct {
					Groups []struct {
						Count int64 `json:"count"`
						Sum   struct {
							EdgeResponseBytes int64 `json:"edgeResponseBytes"`
						} `json:"sum"`
					} `json:"httpRequestsAdaptiveGroups"`
				} `json:"zones"`
			} `json:"viewer"`
		}
		if err := c.graphql(query, 15*time.Second, &out); err != nil || len(out.Viewer.Zones) == 0 {
			continue
		}

		var requests, totalBytes int64
		for _, g := range out.Viewer.Zones[0].Groups {
			requests += g.Count
			totalBytes += g.Sum.EdgeResponseBytes
		}
		if requests > 0 {
			results = append(results, CrawlerStat{
				Crawler:   crawler.Label,
				UAPattern: crawler.UAPattern,
				Requests:  requests,
				Bytes:     totalBytes,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Requests > results[j].Requests
	})
	return results, nil
}

// ReferrerStat is one AI platform's referral traffic into a zone.
type ReferrerStat struct {
	Referrer string
	Requests int64
}

// AIReferralTraffic queries traffic referred from each AI assistant domain.
func (c *Client) AIReferralTraffic(zoneID string, from, to time.Time) ([]ReferrerStat, error) {
	var results []ReferrerStat
	for _, domain := range AIReferrers {
		query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequestsAdaptiveGroups(
	        filter: {
	          datetime_geq: "%s"
	          datetime_leq: "%s"
	          requestSource: "eyeball"
	          OR: [
	            {clientRefererHost: "%s"}
	            {clientRefererHost_like: "%%.%s"}
	          ]
	        }
	        limit: 1
	      ) {
	        count
	      }
	    }
	  }
	}`, zoneID, rfc3339(from), rfc3339(to), domain, domain)

		var out struct {
			Viewer struct {
				Zones []struct {
					Groups countGroups `json:"httpRequestsAdaptiveGroups"`
				} `json:"zones"`
			} `json:"viewer"`
		}
		if err := c.graphql(query, 15*time.Second, &out); err != nil || len(out.Viewer.Zones) == 0 {
			continue
		}
		if total := out.Viewer.Zones[0].Groups.total(); total > 0 {
			results = append(results, ReferrerStat{Referrer: domain, Requests: total})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Requests > results[j].Requests
	})
	return results, nil
}

// PathStat is one request path's AI crawler hit count.
type PathStat struct {
	Path     string
	Requests int64
}

// AITopPaths returns the paths AI crawlers request most, using the first
// ten crawler patterns in one OR filter.
func (c *Client) AITopPaths(zoneID string, from, to time.Time) ([]PathStat, error) {
	var uaFilters string
	for i, crawler := range AICrawlers {
		if i >= 10 {
			break
		}
		uaFilters += fmt.Sprintf(`{userAgent_like: "%%%s%%"} `, crawler.UAPattern)
	}

	query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequestsAdaptiveGroups(
	        filter: {
	          datetime_geq: "%s"
	          datetime_leq: "%s"
	          requestSource: "eyeball"
	          OR: [%s]
	        }
	        limit: 20
	        orderBy: [count_DESC]
	      ) {
	        count
	        dimensions { clientRequestPath }
	      }
	    }
	  }
	}`, zoneID, rfc3339(from), rfc3339(to), uaFilters)

	var out struct {
		Viewer struct {
			Zones []struct {
				Groups []struct {
					Count      int64 `json:"count"`
					Dimensions struct {
						ClientRequestPath string `json:"clientRequestPath"`
					} `json:"dimensions"`
				} `json:"httpRequestsAdaptiveGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	}
	if err := c.graphql(query, 15*time.Second, &out); err != nil {
		return nil, err
	}
	if len(out.Viewer.Zones) == 0 {
		return nil, nil
	}

	var paths []PathStat
	for _, g := range out.Viewer.Zones[0].Groups {
		if g.Count > 0 {
			paths = append(paths, PathStat{Path: g.Dimensions.ClientRequestPath, Requests: g.Count})
		}
	}
	return paths, nil
}

func rfc3339(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
