// Package browser drives headless Chrome through chromedp to render listing
// pages whose cards are filled in by client-side script.
//
// A Browser is one Chrome process and one tab, acquired once per run and
// released with Close. Card handles are live DOM nodes; their text is read
// with the browser's visible-text accessor rather than from markup, because
// titles and paragraphs may be populated after the HTML arrives.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
)

const (
	UserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	WaitTime        = 3 * time.Second
	NavigateTimeout = 60 * time.Second
	QueryTimeout    = 10 * time.Second
)

// Options configures a Browser
type Options struct {
	BaseURL         string // listing URL with a {page} placeholder
	CardSelector    string
	WaitTime        time.Duration // settle delay after navigation
	Headless        bool
	UserAgent       string
	NavigateTimeout time.Duration
	QueryTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = scraper.DefaultBaseURL
	}
	if o.CardSelector == "" {
		o.CardSelector = scraper.CardSelector
	}
	if o.WaitTime < 0 {
		o.WaitTime = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = UserAgent
	}
	if o.NavigateTimeout == 0 {
		o.NavigateTimeout = NavigateTimeout
	}
	if o.QueryTimeout == 0 {
		o.QueryTimeout = QueryTimeout
	}
	return o
}

// Browser is a scraper.PageSource backed by a Chrome tab
type Browser struct {
	opts        Options
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	exec func(context.Context, ...chromedp.Action) error // chromedp.Run when nil
}

// New launches Chrome and opens a tab. The browser lives until Close or
// until parent is cancelled.
func New(parent context.Context, opts Options) (*Browser, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Browser{
		opts:        opts,
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Page navigates to the listing page, waits for rendering to settle and
// returns the card nodes in document order.
func (b *Browser) Page(ctx context.Context, index int) ([]scraper.Element, error) {
	url := scraper.PageURL(b.opts.BaseURL, index)

	var nodes []*cdp.Node
	err := b.run(ctx, b.opts.NavigateTimeout,
		chromedp.Navigate(url),
		chromedp.Sleep(b.opts.WaitTime),
		chromedp.Nodes(b.opts.CardSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}

	return b.wrap(nodes), nil
}

// Text returns the visible, rendered text of el
func (b *Browser) Text(ctx context.Context, el scraper.Element) (string, error) {
	e, ok := el.(*element)
	if !ok {
		return "", fmt.Errorf("browser: cannot read text of %T", el)
	}

	var text string
	if err := b.run(ctx, b.opts.QueryTimeout,
		chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID),
	); err != nil {
		return "", err
	}
	return text, nil
}

// Close shuts down the tab and the Chrome process
func (b *Browser) Close() error {
	err := chromedp.Cancel(b.tab)
	b.cancelTab()
	b.cancelAlloc()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
// Failures after the tab is gone are reported as ErrSessionClosed and a
// cancelled ctx is returned as its own error. An expired timeout is reported
// without the context sentinel so it stays a single-card failure.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := b.tab.Err(); err != nil {
		return fmt.Errorf("%w: %v", scraper.ErrSessionClosed, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(b.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	exec := b.exec
	if exec == nil {
		exec = chromedp.Run
	}

	err := exec(runCtx, actions...)
	if err == nil {
		return nil
	}
	if b.tab.Err() != nil {
		return fmt.Errorf("%w: %v", scraper.ErrSessionClosed, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %v", timeout, err)
	}
	return err
}

func (b *Browser) wrap(nodes []*cdp.Node) []scraper.Element {
	out := make([]scraper.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{b: b, node: n})
	}
	return out
}

// element is a live DOM node in the browser tab
type element struct {
	b    *Browser
	node *cdp.Node
}

func (e *element) Find(ctx context.Context, selector string) (scraper.Element, error) {
	all, err := e.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%q: %w", selector, scraper.ErrNotFound)
	}
	return all[0], nil
}

func (e *element) FindAll(ctx context.Context, selector string) ([]scraper.Element, error) {
	var nodes []*cdp.Node
	if err := e.b.run(ctx, e.b.opts.QueryTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	); err != nil {
		return nil, err
	}
	return e.b.wrap(nodes), nil
}

func (e *element) Attr(ctx context.Context, name string) (*string, error) {
	var (
		value string
		ok    bool
	)
	if err := e.b.run(ctx, e.b.opts.QueryTimeout,
		chromedp.AttributeValue([]cdp.NodeID{e.node.NodeID}, name, &value, &ok, chromedp.ByNodeID),
	); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &value, nil
}
