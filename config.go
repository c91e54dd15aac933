package pulseboard

import (
	"time"

	"github.com/eringen/pulseboard/dashboard"
)

// Config holds all configuration for a pulseboard server.
type Config struct {
	Name string // Page title (default "Analytics")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // Analytics SQLite path (default "data/analytics.db")

	// SourceURL is the analytics service the dashboard reads. Empty means the
	// service running in this process.
	SourceURL    string
	FetchTimeout time.Duration // Bound on each dashboard fetch (default 10s)
	Locale       string        // BCP 47 tag for number formatting (default "en-US")

	SessionSecret string // Required: session cookie secret
	CookieSecure  bool   // Set true for HTTPS

	VisitEndpoint   string        // Endpoint counted as a visit (default "/")
	SummaryCacheTTL time.Duration // Summary cache lifetime (default 5s)
	RetentionDays   int           // Events older than this are removed (default 365)
	CleanupInterval time.Duration // How often old events are removed (default 24h)

	LogLevel string // debug, info, warn, error or off (default "info")
	LogFile  string // Optional rotated log file, in addition to stderr
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Analytics"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/analytics.db"
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.Locale == "" {
		c.Locale = dashboard.DefaultLocale.String()
	}
	if c.VisitEndpoint == "" {
		c.VisitEndpoint = "/"
	}
	if c.SummaryCacheTTL == 0 {
		c.SummaryCacheTTL = 5 * time.Second
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 365
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = 24 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ConfigFromEnv reads the configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Name:            EnvOr("SITE_NAME", ""),
		Addr:            EnvOr("ADDR", ""),
		DatabasePath:    EnvOr("DATABASE_PATH", ""),
		SourceURL:       EnvOr("SOURCE_URL", ""),
		FetchTimeout:    EnvDuration("FETCH_TIMEOUT", 0),
		Locale:          EnvOr("LOCALE", ""),
		SessionSecret:   EnvOr("SESSION_SECRET", ""),
		CookieSecure:    EnvBool("COOKIE_SECURE", false),
		VisitEndpoint:   EnvOr("VISIT_ENDPOINT", ""),
		SummaryCacheTTL: EnvDuration("SUMMARY_CACHE_TTL", 0),
		RetentionDays:   EnvInt("RETENTION_DAYS", 0),
		CleanupInterval: EnvDuration("CLEANUP_INTERVAL", 0),
		LogLevel:        EnvOr("LOG_LEVEL", ""),
		LogFile:         EnvOr("LOG_FILE", ""),
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithFetcher replaces the source the dashboard reads, regardless of
// SourceURL.
func WithFetcher(f dashboard.Fetcher) Option {
	return func(a *App) {
		a.fetcher = f
	}
}
