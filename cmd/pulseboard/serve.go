package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/pulseboard"
)

func newServeCmd() *cobra.Command {
	var envFiles []string
	cfg := pulseboard.Config{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		Long: `Run the dashboard server.

Configuration is read from the environment (and .env files); flags override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := pulseboard.LoadEnvFiles(envFiles...); err != nil {
				return err
			}
			merged := pulseboard.ConfigFromEnv()
			applyServeFlags(cmd, &merged, cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := pulseboard.New(merged)
			defer app.Close()
			return app.Start(ctx)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load")
	f.StringVar(&cfg.Addr, "addr", "", "listen address (ADDR)")
	f.StringVar(&cfg.DatabasePath, "db", "", "analytics database path (DATABASE_PATH)")
	f.StringVar(&cfg.SourceURL, "source", "", "read the summary from this service instead of the local store (SOURCE_URL)")
	f.StringVar(&cfg.Locale, "locale", "", "locale for number formatting (LOCALE)")
	f.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 0, "bound on each dashboard fetch (FETCH_TIMEOUT)")
	f.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn, error or off (LOG_LEVEL)")
	f.StringVar(&cfg.LogFile, "log-file", "", "also write logs to this rotated file (LOG_FILE)")
	f.BoolVar(&cfg.CookieSecure, "cookie-secure", false, "mark cookies Secure (COOKIE_SECURE)")
	return cmd
}

// applyServeFlags copies the flags the user set onto dst.
func applyServeFlags(cmd *cobra.Command, dst *pulseboard.Config, flags pulseboard.Config) {
	set := cmd.Flags().Changed
	if set("addr") {
		dst.Addr = flags.Addr
	}
	if set("db") {
		dst.DatabasePath = flags.DatabasePath
	}
	if set("source") {
		dst.SourceURL = flags.SourceURL
	}
	if set("locale") {
		dst.Locale = flags.Locale
	}
	if set("fetch-timeout") {
		dst.FetchTimeout = flags.FetchTimeout
	}
	if set("log-level") {
		dst.LogLevel = flags.LogLevel
	}
	if set("log-file") {
		dst.LogFile = flags.LogFile
	}
	if set("cookie-secure") {
		dst.CookieSecure = flags.CookieSecure
	}
}
