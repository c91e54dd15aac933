package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pulseboard"
	"github.com/eringen/pulseboard/client"
	"github.com/eringen/pulseboard/dashboard"
)

var errUnavailable = errors.New("analytics unavailable")

const settleGrace = time.Second

type snapshotOptions struct {
	source  string
	locale  string
	timeout time.Duration
	html    bool
}

func newSnapshotCmd() *cobra.Command {
	opts := snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the summary once and print the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dashboard.ParseFormatter(opts.locale)
			if err != nil {
				return err
			}
			fetcher := client.New(opts.source, client.WithTimeout(opts.timeout))
			return runSnapshot(cmd.Context(), cmd, fetcher, f, opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.source, "source", pulseboard.EnvOr("SOURCE_URL", "http://localhost:3000"), "analytics service base URL")
	fl.StringVar(&opts.locale, "locale", pulseboard.EnvOr("LOCALE", ""), "locale for number formatting")
	fl.DurationVar(&opts.timeout, "timeout", 10*time.Second, "give up after this long")
	fl.BoolVar(&opts.html, "html", false, "print the HTML fragment instead of text")
	return cmd
}

// runSnapshot mounts a view for one fetch, waits for it to settle and prints
// whatever the view would show.
func runSnapshot(ctx context.Context, cmd *cobra.Command, fetcher dashboard.Fetcher, f dashboard.Formatter, opts snapshotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	view := dashboard.New(fetcher, dashboard.WithTimeout(opts.timeout))
	view.Mount(ctx)
	defer view.Unmount()

	// The view times the fetch out itself; the grace only covers a fetcher
	// that ignores its context.
	wait, cancel := context.WithTimeout(ctx, opts.timeout+settleGrace)
	defer cancel()
	select {
	case <-view.Settled():
	case <-wait.Done():
	}

	state := view.State()
	out := cmd.OutOrStdout()
	if opts.html {
		html, err := dashboard.RenderString(state, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, html)
	} else {
		fmt.Fprint(out, dashboard.RenderText(state, f))
	}

	if dashboard.Decide(state).Branch != dashboard.BranchDashboard {
		return errUnavailable
	}
	return nil
}
