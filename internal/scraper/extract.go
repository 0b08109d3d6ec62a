package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/eventscrape/internal/event"
)

// Extraction stages reported in CardError
const (
	StageTitle     = "title"
	StageAnchor    = "anchor"
	StageAttribute = "attribute"
	StageParagraph = "paragraph"
)

// Extractor turns rendered cards into records, rejecting titles its
// Collector has already seen.
type Extractor struct {
	selectors Selectors
	seen      *Collector
}

// NewExtractor creates an extractor that registers titles in c
func NewExtractor(sel Selectors, c *Collector) *Extractor {
	return &Extractor{
		selectors: sel.WithDefaults(),
		seen:      c,
	}
}

// Extract reads one card. It returns a record, ErrDuplicate when the title
// was already produced, or a *CardError. Title and paragraph text go through
// page so the rendered text is read rather than the markup.
//
// The title is registered before the link is read. A card that fails after
// that point still claims its title. An absent href leaves URL empty.
func (x *Extractor) Extract(ctx context.Context, card Element, page TextReader) (*event.Record, error) {
	titleEl, err := card.Find(ctx, x.selectors.Title)
	if err != nil {
		return nil, &CardError{Stage: StageTitle, Err: err}
	}

	raw, err := page.Text(ctx, titleEl)
	if err != nil {
		return nil, &CardError{Stage: StageTitle, Err: err}
	}

	title := event.NormalizeTitle(raw)
	if title == "" {
		return nil, &CardError{Stage: StageTitle, Err: errors.New("empty title")}
	}

	if x.seen.Seen(title) {
		return nil, ErrDuplicate
	}
	x.seen.Register(title)

	anchor, err := card.Find(ctx, x.selectors.Anchor)
	if err != nil {
		return nil, &CardError{Stage: StageAnchor, Err: err}
	}

	attrs := make(map[string]*string, 4)
	for _, name := range []string{AttrHref, AttrLocation, AttrPaidStatus, AttrCategory} {
		v, err := anchor.Attr(ctx, name)
		if err != nil {
			return nil, &CardError{Stage: StageAttribute, Err: fmt.Errorf("%s: %w", name, err)}
		}
		attrs[name] = v
	}

	paragraphs, err := card.FindAll(ctx, x.selectors.Paragraph)
	if err != nil {
		return nil, &CardError{Stage: StageParagraph, Err: err}
	}

	fragments := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		text, err := page.Text(ctx, p)
		if err != nil {
			return nil, &CardError{Stage: StageParagraph, Err: err}
		}
		fragments = append(fragments, strings.TrimSpace(text))
	}

	fields := Classify(fragments)

	var url string
	if href := attrs[AttrHref]; href != nil {
		url = *href
	}

	rec := &event.Record{
		Title:      title,
		URL:        url,
		Location:   attrs[AttrLocation],
		PaidStatus: attrs[AttrPaidStatus],
		Category:   attrs[AttrCategory],
		Urgency:    fields.Urgency,
		Schedule:   fields.Schedule,
		Price:      fields.Price,
		Host:       fields.Host,
	}
	return rec, nil
}
