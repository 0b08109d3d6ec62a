package scraper

import (
	"context"
	"errors"
)

// fakeElement is an in-memory element. children is keyed by selector.
type fakeElement struct {
	text     string
	textErr  error
	attrs    map[string]string
	attrErr  error
	children map[string][]*fakeElement
	findErr  error
}

func (e *fakeElement) Find(_ context.Context, selector string) (Element, error) {
	if e.findErr != nil {
		return nil, e.findErr
	}
	if kids := e.children[selector]; len(kids) > 0 {
		return kids[0], nil
	}
	return nil, ErrNotFound
}

func (e *fakeElement) FindAll(_ context.Context, selector string) ([]Element, error) {
	if e.findErr != nil {
		return nil, e.findErr
	}
	out := make([]Element, 0, len(e.children[selector]))
	for _, k := range e.children[selector] {
		out = append(out, k)
	}
	return out, nil
}

func (e *fakeElement) Attr(_ context.Context, name string) (*string, error) {
	if e.attrErr != nil {
		return nil, e.attrErr
	}
	v, ok := e.attrs[name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// fakeSource serves fixed pages and records which indices were requested
type fakeSource struct {
	pages   map[int][]*fakeElement
	pageErr map[int]error
	visited []int
	closed  bool
}

func (s *fakeSource) Page(_ context.Context, index int) ([]Element, error) {
	s.visited = append(s.visited, index)
	if err := s.pageErr[index]; err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(s.pages[index]))
	for _, c := range s.pages[index] {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeSource) Text(_ context.Context, el Element) (string, error) {
	fe, ok := el.(*fakeElement)
	if !ok {
		return "", errors.New("foreign element")
	}
	if fe.textErr != nil {
		return "", fe.textErr
	}
	return fe.text, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type cardOpts struct {
	noTitle  bool
	noAnchor bool
	attrs    map[string]string
}

// newCard builds a card with the default selectors
func newCard(title string, paragraphs []string, opts cardOpts) *fakeElement {
	card := &fakeElement{children: map[string][]*fakeElement{}}

	if !opts.noTitle {
		card.children[TitleSelector] = []*fakeElement{{text: title}}
	}

	if !opts.noAnchor {
		attrs := opts.attrs
		if attrs == nil {
			attrs = map[string]string{
				AttrHref:       "https://www.eventbrite.com/e/" + slug(title),
				AttrLocation:   "Singapore",
				AttrPaidStatus: "paid",
				AttrCategory:   "Music",
			}
		}
		card.children[AnchorSelector] = []*fakeElement{{attrs: attrs}}
	}

	for _, p := range paragraphs {
		card.children[ParagraphSelector] = append(card.children[ParagraphSelector], &fakeElement{text: p})
	}
	return card
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
