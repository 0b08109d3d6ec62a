package scraper

import (
	"context"
	"strconv"
	"strings"
)

// DefaultBaseURL is the Eventbrite Singapore listing. {page} is replaced
// with the 1-based page index.
const DefaultBaseURL = "https://www.eventbrite.com/d/singapore--singapore/all-events/?page={page}"

// PageURL expands the {page} placeholder in tmpl
func PageURL(tmpl string, page int) string {
	return strings.ReplaceAll(tmpl, "{page}", strconv.Itoa(page))
}

// Element is a handle to one node in a rendered page
type Element interface {
	// Find returns the first descendant matching selector, or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)

	// FindAll returns every descendant matching selector in document order.
	// No match is an empty slice, not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)

	// Attr returns the raw attribute value, or nil if the attribute is absent.
	Attr(ctx context.Context, name string) (*string, error)
}

// TextReader reads an element's visible text after client-side rendering
type TextReader interface {
	Text(ctx context.Context, el Element) (string, error)
}

// PageSource navigates to listing pages and returns their event cards.
// Implementations wait out any rendering delay before returning.
type PageSource interface {
	TextReader

	// Page navigates to the 1-based page index and returns its cards in
	// document order.
	Page(ctx context.Context, index int) ([]Element, error)

	// Close releases the underlying browser or HTTP session.
	Close() error
}

// Selectors locates the parts of an event card
type Selectors struct {
	Card      string `yaml:"card"`
	Title     string `yaml:"title"`
	Anchor    string `yaml:"anchor"`
	Paragraph string `yaml:"paragraph"`
}

// Default selectors and attribute names for Eventbrite listing cards
const (
	CardSelector      = "section.event-card-details"
	TitleSelector     = "a.event-card-link h3"
	AnchorSelector    = "a.event-card-link"
	ParagraphSelector = "p"

	AttrHref       = "href"
	AttrLocation   = "data-event-location"
	AttrPaidStatus = "data-event-paid-status"
	AttrCategory   = "data-event-category"
)

// DefaultSelectors returns the Eventbrite card selectors
func DefaultSelectors() Selectors {
	return Selectors{
		Card:      CardSelector,
		Title:     TitleSelector,
		Anchor:    AnchorSelector,
		Paragraph: ParagraphSelector,
	}
}

// WithDefaults fills empty selectors from DefaultSelectors
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	if s.Card == "" {
		s.Card = d.Card
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Anchor == "" {
		s.Anchor = d.Anchor
	}
	if s.Paragraph == "" {
		s.Paragraph = d.Paragraph
	}
	return s
}
