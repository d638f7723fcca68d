// Package engines bundles the search engine and analytics clients behind a
// single capability set. A nil client means the credential is missing, so
// commands can skip that engine instead of failing.
package engines

import (
	"context"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/pkg/engines/bing"
	"github.com/amosWeiskopf/seosmith/pkg/engines/cloudflare"
	"github.com/amosWeiskopf/seosmith/pkg/engines/ga"
	"github.com/amosWeiskopf/seosmith/pkg/engines/gsc"
	"github.com/amosWeiskopf/seosmith/pkg/engines/indexing"
	"github.com/amosWeiskopf/seosmith/pkg/engines/indexnow"
	"github.com/amosWeiskopf/seosmith/pkg/engines/keywords"
	"github.com/amosWeiskopf/seosmith/pkg/engines/serp"
	"github.com/amosWeiskopf/seosmith/pkg/engines/yandex"
)

// Set holds one client per configured engine. Unconfigured engines are nil.
// Keywords and Serp need no credentials and are always present.
type Set struct {
	GSC        *gsc.Client
	Indexing   *indexing.Client
	GA         *ga.Client
	Bing       *bing.Client
	Yandex     *yandex.Client
	Cloudflare *cloudflare.Client
	IndexNow   *indexnow.Client
	Keywords   *keywords.Client
	Serp       *serp.Client
}

// Build constructs clients for every engine with credentials in cfg.
// Google client construction can fail on a bad key file; that error is
// returned, everything else is presence-driven.
func Build(ctx context.Context, cfg *config.Config) (*Set, error) {
	set := &Set{
		Keywords: keywords.New("en"),
		Serp:     serp.New(cfg.Serp.CSEKey, cfg.Serp.CSECx, "en"),
	}
	if cfg.Serp.SearxngURL != "" {
		set.Serp.SetSearxngURL(cfg.Serp.SearxngURL)
	}

	if cfg.HasGoogle() {
		sa := cfg.Google.ServiceAccountFile
		gscClient, err := gsc.New(ctx, sa)
		if err != nil {
			return nil, err
		}
		idxClient, err := indexing.New(ctx, sa)
		if err != nil {
			return nil, err
		}
		gaClient, err := ga.New(ctx, sa)
		if err != nil {
			return nil, err
		}
		set.GSC = gscClient
		set.Indexing = idxClient
		set.GA = gaClient
	}
	if cfg.HasBing() {
		set.Bing = bing.New(cfg.Bing.APIKey)
	}
	if cfg.HasYandex() {
		set.Yandex = yandex.New(cfg.Yandex.OAuthToken)
	}
	if cfg.HasCloudflare() {
		set.Cloudflare = cloudflare.New(cfg.Cloudflare.APIToken)
	}
	if cfg.HasIndexNow() {
		set.IndexNow = indexnow.New(cfg.IndexNow.Key)
	}
	return set, nil
}

// Names returns the configured engine names for status output.
func (s *Set) Names() []string {
	var names []string
	if s.GSC != nil {
		names = append(names, "google")
	}
	if s.Bing != nil {
		names = append(names, "bing")
	}
	if s.Yandex != nil {
		names = append(names, "yandex")
	}
	if s.Cloudflare != nil {
		names = append(names, "cloudflare")
	}
	if s.IndexNow != nil {
		names = append(names, "indexnow")
	}
	return names
}
