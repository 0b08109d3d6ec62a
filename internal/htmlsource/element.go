package htmlsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
)

// Element is a scraper.Element over a single goquery node
type Element struct {
	sel *goquery.Selection
}

// Wrap returns an Element for the first node in sel
func Wrap(sel *goquery.Selection) *Element {
	return &Element{sel: sel.First()}
}

// Selection returns the underlying goquery selection
func (e *Element) Selection() *goquery.Selection {
	return e.sel
}

// Find returns the first descendant matching selector
func (e *Element) Find(_ context.Context, selector string) (scraper.Element, error) {
	found := e.sel.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", selector, scraper.ErrNotFound)
	}
	return Wrap(found), nil
}

// FindAll returns every descendant matching selector in document order
func (e *Element) FindAll(_ context.Context, selector string) ([]scraper.Element, error) {
	found := e.sel.Find(selector)
	out := make([]scraper.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Wrap(s))
	})
	return out, nil
}

// Attr returns the attribute value, or nil when absent
func (e *Element) Attr(_ context.Context, name string) (*string, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// TextReader reads element text from parsed markup. Runs of whitespace are
// collapsed the way a browser lays out inline text.
type TextReader struct{}

// Text returns the collapsed text content of el
func (TextReader) Text(_ context.Context, el scraper.Element) (string, error) {
	e, ok := el.(*Element)
	if !ok {
		return "", fmt.Errorf("htmlsource: cannot read text of %T", el)
	}
	return collapse(e.sel.Text()), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Cards parses an HTML document and returns the elements matching
// cardSelector in document order.
func Cards(r io.Reader, cardSelector string) ([]scraper.Element, error) {
	if cardSelector == "" {
		return nil, errors.New("card selector is empty")
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	cards := make([]scraper.Element, 0)
	doc.Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, Wrap(s))
	})
	return cards, nil
}
