package audit

import (
	"strings"

	"github.com/temoto/robotstxt"

	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

// aiBots are the crawler tokens AI assistants identify as in robots.txt.
var aiBots = []string{"gptbot", "chatgpt-user", "claude-web", "anthropic", "perplexitybot", "cohere-ai"}

// robotsInfo is the single robots.txt fetch shared by the file, GEO and
// crawler-access checks.
type robotsInfo struct {
	present bool
	body    string
	data    *robotstxt.RobotsData
}

func fetchRobots(client *fetch.Client, base string) robotsInfo {
	res, err := client.GetTimeout(base+"/robots.txt", fetch.ProbeTimeout)
	if err != nil || res.Status != 200 {
		return robotsInfo{}
	}
	info := robotsInfo{present: true, body: res.Body}
	if data, err := robotstxt.FromString(res.Body); err == nil {
		info.data = data
	}
	return info
}

// blockedAIBots returns the AI bot tokens that appear in a robots.txt that
// also carries a Disallow directive. The match is a plain substring scan:
// a mentioned bot with any Disallow counts as blocked.
func (r robotsInfo) blockedAIBots() []string {
	if !r.present {
		return nil
	}
	text := strings.ToLower(r.body)
	if !strings.Contains(text, "disallow") {
		return nil
	}
	var blocked []string
	for _, bot := range aiBots {
		if strings.Contains(text, bot) {
			blocked = append(blocked, bot)
		}
	}
	return blocked
}

// declaresSitemap reports whether robots.txt carries a Sitemap directive.
func (r robotsInfo) declaresSitemap() bool {
	return r.data != nil && len(r.data.Sitemaps) > 0
}

// allowsGooglebot reports whether Googlebot may fetch the site root.
// An absent or unparseable robots.txt allows everything.
func (r robotsInfo) allowsGooglebot() bool {
	if r.data == nil {
		return true
	}
	return r.data.TestAgent("/", "Googlebot")
}
