package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/drewfead/meetplan/internal/auth"
	"github.com/drewfead/meetplan/internal/calendar"
	"github.com/drewfead/meetplan/internal/config"
	"github.com/drewfead/meetplan/pkg/fetch"
	"github.com/drewfead/meetplan/internal/meetings"
)

// app holds the collaborators shared by every command. Remote clients are
// built lazily so commands that never touch the network need no credentials.
type app struct {
	cfg    *config.Config
	out    io.Writer
	format string

	// fetcher and calendarHTTPClient may be injected; otherwise they are
	// derived from cfg on first use.
	fetcher            fetch.Fetcher
	calendarHTTPClient func(ctx context.Context) (*http.Client, error)
	calendarClient     *calendar.Client
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) meetingsClient(ctx context.Context) (*meetings.Client, error) {
	if a.fetcher == nil {
		if a.cfg.API.BaseURL == "" {
			return nil, fmt.Errorf("no API base URL configured (set api.base_url or %sAPI_BASE_URL)", config.EnvPrefix)
		}

		f, err := fetch.NewHTTPFetcher(ctx, a.cfg.API.BaseURL,
			fetch.WithBearerToken(a.cfg.API.Token),
			fetch.WithTimeout(a.cfg.API.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create fetcher: %w", err)
		}
		a.fetcher = f
	}
	return meetings.NewClient(a.fetcher), nil
}

// ensureCalendar lazily initializes the calendar client on first use
func (a *app) ensureCalendar(ctx context.Context) (*calendar.Client, error) {
	if a.calendarClient != nil {
		return a.calendarClient, nil
	}

	newHTTPClient := a.calendarHTTPClient
	if newHTTPClient == nil {
		newHTTPClient = a.googleHTTPClient
	}

	httpClient, err := newHTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Google Calendar integration failed: %w\n\nPlace a service account key or OAuth client file at %s", err, a.cfg.Auth.CredentialsPath)
	}

	client, err := calendar.NewClient(ctx, httpClient, a.cfg.Calendar.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	a.calendarClient = client
	return client, nil
}

func (a *app) googleHTTPClient(ctx context.Context) (*http.Client, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	return auth.HTTPClient(ctx, auth.Config{
		CredentialsPath: a.cfg.Auth.CredentialsPath,
		TokenPath:       a.cfg.Auth.TokenPath,
		CallbackPort:    a.cfg.Auth.CallbackPort,
	})
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	ctx := context.Background()

	rootCmd := newRootCommand(newApp(os.Stdout))
	if err := rootCmd.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
