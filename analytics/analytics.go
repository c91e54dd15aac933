// Package analytics records page views and API calls per visitor session and
// serves the aggregated summary the dashboard displays.
package analytics

import (
	"strings"
	"time"

	"github.com/eringen/pulseboard/dashboard"
)

// Kind distinguishes the two tracked event types.
type Kind string

const (
	KindPageView Kind = "page_view"
	KindAPICall  Kind = "api_call"
)

// Event is a single tracked request.
type Event struct {
	ID        int64     `json:"-"`
	SessionID string    `json:"session_id"`
	Endpoint  string    `json:"endpoint"`
	Kind      Kind      `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary holds the aggregated counts served at /api/analytics.
type Summary struct {
	TotalVisits   int64            `json:"total_visits"`
	UniqueUsers   int64            `json:"unique_users"`
	APIHits       int64            `json:"api_hits"`
	EndpointStats map[string]int64 `json:"endpoint_stats"`
	LastUpdated   time.Time        `json:"last_updated"`
}

// Snapshot converts the summary into the dashboard payload.
func (s *Summary) Snapshot() *dashboard.Snapshot {
	stats := make(map[string]dashboard.EndpointStat, len(s.EndpointStats))
	for endpoint, hits := range s.EndpointStats {
		stats[endpoint] = dashboard.EndpointStat{Hits: hits}
	}
	updated := s.LastUpdated
	return &dashboard.Snapshot{
		TotalVisits:   dashboard.Count(s.TotalVisits),
		UniqueUsers:   dashboard.Count(s.UniqueUsers),
		APIHits:       dashboard.Count(s.APIHits),
		EndpointStats: stats,
		LastUpdated:   &updated,
	}
}

// IsBot checks if the User-Agent is likely a bot/crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	bots := []string{
		"bot", "crawler", "spider", "crawl", "slurp", "scrape",
		"googlebot", "bingbot", "yandex", "baidu", "duckduckbot",
		"facebookexternalhit", "twitterbot", "linkedinbot",
		"ahrefsbot", "semrushbot", "mj12bot", "dotbot",
	}
	for _, bot := range bots {
		if strings.Contains(ua, bot) {
			return true
		}
	}
	return false
}
