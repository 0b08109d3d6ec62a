package htmlsource

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
)

const (
	UserAgent = "eventscrape/1.0 (github.com/pfrederiksen/eventscrape)"
	Timeout   = 30 * time.Second
)

// Options configures a Source
type Options struct {
	BaseURL      string // listing URL with a {page} placeholder
	CardSelector string
	UserAgent    string
	Timeout      time.Duration
}

// Source fetches listing pages over HTTP and returns goquery-backed cards.
// It is not safe for concurrent use.
type Source struct {
	TextReader

	collector *colly.Collector
	baseURL   string

	pending []scraper.Element
	lastErr error
	closed  bool
}

// New creates a Source. Empty options fall back to the package defaults
// and the Eventbrite listing.
func New(opts Options) *Source {
	if opts.BaseURL == "" {
		opts.BaseURL = scraper.DefaultBaseURL
	}
	if opts.CardSelector == "" {
		opts.CardSelector = scraper.CardSelector
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = Timeout
	}

	collector := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(opts.Timeout)

	s := &Source{
		collector: collector,
		baseURL:   opts.BaseURL,
	}

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	collector.OnHTML(opts.CardSelector, func(e *colly.HTMLElement) {
		s.pending = append(s.pending, Wrap(e.DOM))
	})

	collector.OnError(func(r *colly.Response, err error) {
		s.lastErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	return s
}

// Page fetches the listing page and returns its cards
func (s *Source) Page(ctx context.Context, index int) ([]scraper.Element, error) {
	if s.closed {
		return nil, scraper.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.pending = make([]scraper.Element, 0)
	s.lastErr = nil

	url := scraper.PageURL(s.baseURL, index)
	if err := s.collector.Visit(url); err != nil {
		if s.lastErr != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, s.lastErr)
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if s.lastErr != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, s.lastErr)
	}

	cards := s.pending
	s.pending = nil
	return cards, nil
}

// Close marks the source closed. Later Page calls return ErrSessionClosed.
func (s *Source) Close() error {
	s.closed = true
	return nil
}
