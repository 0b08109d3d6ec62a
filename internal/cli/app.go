package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pfrederiksen/eventscrape/internal/config"
	"github.com/pfrederiksen/eventscrape/internal/event"
	"github.com/pfrederiksen/eventscrape/internal/export"
	"github.com/pfrederiksen/eventscrape/internal/logger"
	"github.com/pfrederiksen/eventscrape/internal/metrics"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
	"github.com/pfrederiksen/eventscrape/internal/storage"
)

// App wires configuration, a page source, the crawl and the exporters
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	OpenSource func(context.Context, *config.Config) (scraper.PageSource, error)
	Out        io.Writer
}

// Run crawls pages 1..pages and exports the results.
//
// The page source is closed before Run returns, on every path. A fatal crawl
// error skips the export unless ExportPartialOnFailure is set, in which case
// the records gathered so far are exported and the crawl error is still
// returned.
func (a *App) Run(ctx context.Context, pages int) error {
	cfg := a.Config
	log := a.Log
	if log == nil {
		log = logger.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	log.Info("Starting run", logger.Fields{
		"pages":  pages,
		"driver": cfg.Driver,
		"output": store.Dir(),
	})

	m := metrics.NewRun()
	result, runErr := a.crawl(ctx, pages, m, log)

	if runErr != nil {
		log.Error("Run aborted", logger.Fields{
			"pages_completed": result.Pages,
			"records":         len(result.Records),
		}, runErr)

		if !cfg.ExportPartialOnFailure {
			a.writeMetrics(m, 0, false, log)
			return runErr
		}
		log.Warn("Exporting partial results", logger.Fields{"records": len(result.Records)})
	}

	if err := export.Files(store, result.Records, cfg.CSVFile, cfg.JSONFile); err != nil {
		log.Error("Export failed", nil, err)
		a.writeMetrics(m, 0, false, log)
		return err
	}

	a.writeMetrics(m, len(result.Records), runErr == nil, log)

	log.Info("Run complete", logger.Fields{
		"records":    result.Stats.Accepted,
		"duplicates": result.Stats.Duplicates,
		"failures":   result.Stats.Failures,
	})

	if a.Out != nil {
		fmt.Fprintf(a.Out, "Exported %d events to %s and %s\n",
			len(result.Records), store.Path(cfg.CSVFile), store.Path(cfg.JSONFile))
	}

	return runErr
}

// crawl opens the page source, runs the pipeline and always closes the source
func (a *App) crawl(ctx context.Context, pages int, m *metrics.Run, log *logger.Logger) (*scraper.Result, error) {
	empty := &scraper.Result{Records: []*event.Record{}}

	// No navigation for an empty run, so no browser either
	if pages <= 0 {
		return empty, nil
	}

	src, err := a.OpenSource(ctx, a.Config)
	if err != nil {
		return empty, fmt.Errorf("opening %s source: %w", a.Config.Driver, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("Closing page source failed", logger.Fields{"error": err.Error()})
		}
	}()

	runner := &scraper.Runner{
		Selectors: a.Config.Selectors,
		Log:       log,
		Observer:  m,
	}
	return runner.Run(ctx, pages, src)
}

func (a *App) writeMetrics(m *metrics.Run, records int, success bool, log *logger.Logger) {
	m.Finish(records, success)
	if a.Config.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(a.Config.MetricsFile); err != nil {
		log.Warn("Writing metrics failed", logger.Fields{"error": err.Error()})
	}
}
