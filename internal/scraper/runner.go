package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/pfrederiksen/eventscrape/internal/event"
	"github.com/pfrederiksen/eventscrape/internal/logger"
)

// Outcome classifies what happened to one card
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Observer receives per-page and per-card notifications, e.g. for metrics
type Observer interface {
	ObservePage(page, cards int, elapsed time.Duration)
	ObserveCard(outcome Outcome)
}

// Runner drives a crawl over pages 1..N. A Runner holds no run state and
// may be reused; each Run gets a fresh Collector.
type Runner struct {
	Selectors Selectors
	Log       *logger.Logger
	Observer  Observer
}

// Result is the output of one run
type Result struct {
	Records []*event.Record
	Stats   Stats
	Pages   int // pages fully drained
}

// Run crawls pages 1..pages from src in order and returns the accepted
// records. pages <= 0 performs no navigation.
//
// On a fatal error the returned Result holds everything accepted before the
// failure, so the caller can choose to export it.
func (r *Runner) Run(ctx context.Context, pages int, src PageSource) (*Result, error) {
	log := r.Log
	if log == nil {
		log = logger.Default()
	}

	collector := NewCollector()
	extractor := NewExtractor(r.Selectors, collector)
	result := &Result{}

	finish := func(err error) (*Result, error) {
		result.Records = collector.Records()
		result.Stats = collector.Stats()
		return result, err
	}

	for page := 1; page <= pages; page++ {
		log.Info("Scraping page", logger.Fields{"page": page})
		start := time.Now()

		cards, err := src.Page(ctx, page)
		if err != nil {
			return finish(&PageError{Page: page, Err: err})
		}

		for i, card := range cards {
			rec, err := extractor.Extract(ctx, card, src)
			switch {
			case err == nil:
				collector.Accept(rec)
				r.observeCard(OutcomeAccepted)

			case errors.Is(err, ErrDuplicate):
				collector.noteDuplicate()
				r.observeCard(OutcomeDuplicate)
				log.Debug("Skipping duplicate event", logger.Fields{"page": page, "card": i})

			default:
				var cardErr *CardError
				if errors.As(err, &cardErr) {
					cardErr.Page, cardErr.Index = page, i
				}
				if IsFatal(err) || ctx.Err() != nil {
					return finish(err)
				}
				collector.noteFailure()
				r.observeCard(OutcomeFailed)
				log.Warn("Failed to parse event", logger.Fields{"page": page, "card": i, "error": err.Error()})
			}
		}

		result.Pages = page
		if r.Observer != nil {
			r.Observer.ObservePage(page, len(cards), time.Since(start))
		}
	}

	return finish(nil)
}

func (r *Runner) observeCard(o Outcome) {
	if r.Observer != nil {
		r.Observer.ObserveCard(o)
	}
}
