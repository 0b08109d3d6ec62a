package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pfrederiksen/eventscrape/internal/browser"
	"github.com/pfrederiksen/eventscrape/internal/config"
	"github.com/pfrederiksen/eventscrape/internal/htmlsource"
	"github.com/pfrederiksen/eventscrape/internal/logger"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1

	DefaultPages = 10
)

var flagPages int

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventscrape",
		Short: "Scrape Eventbrite events",
		Long: `Scrape event listings page by page, deduplicate events by title,
and export them to CSV and JSON.

Settings other than the page count come from eventscrape.yaml or the file
named by $EVENTSCRAPE_CONFIG, and from EVENTSCRAPE_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	cmd.Flags().IntVar(&flagPages, "pages", DefaultPages, "Number of pages to scrape")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	if flagPages < 0 {
		return fmt.Errorf("--pages must not be negative: %d", flagPages)
	}

	cfg, err := config.Resolve(os.Getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(level, os.Stderr).With(logger.Fields{"run_id": uuid.NewString()})
	logger.SetDefault(log)

	app := &App{
		Config:     cfg,
		Log:        log,
		OpenSource: OpenSource,
		Out:        cmd.OutOrStdout(),
	}

	return app.Run(cmd.Context(), flagPages)
}

// OpenSource starts the page source named by cfg.Driver
func OpenSource(ctx context.Context, cfg *config.Config) (scraper.PageSource, error) {
	switch cfg.Driver {
	case config.DriverHTTP:
		return htmlsource.New(htmlsource.Options{
			BaseURL:      cfg.BaseURL,
			CardSelector: cfg.Selectors.Card,
			UserAgent:    cfg.UserAgent,
		}), nil

	case config.DriverChrome, "":
		return browser.New(ctx, browser.Options{
			BaseURL:      cfg.BaseURL,
			CardSelector: cfg.Selectors.Card,
			WaitTime:     cfg.WaitTime,
			Headless:     cfg.Headless,
			UserAgent:    cfg.UserAgent,
		})

	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
