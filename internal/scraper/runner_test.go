package scraper

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pfrederiksen/eventscrape/internal/logger"
)

type countingObserver struct {
	pages    []int
	outcomes map[Outcome]int
}

func (o *countingObserver) ObservePage(page, _ int, _ time.Duration) {
	o.pages = append(o.pages, page)
}

func (o *countingObserver) ObserveCard(outcome Outcome) {
	if o.outcomes == nil {
		o.outcomes = map[Outcome]int{}
	}
	o.outcomes[outcome]++
}

func titles(res *Result) []string {
	out := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, r.Title)
	}
	return out
}

func TestRun(t *testing.T) {
	src := &fakeSource{pages: map[int][]*fakeElement{
		1: {
			newCard("Jazz Night", []string{"7pm"}, cardOpts{}),
			newCard("Art Walk", nil, cardOpts{}),
			newCard("Jazz Night", nil, cardOpts{}), // same page duplicate
		},
		2: {
			newCard(" Art Walk ", nil, cardOpts{}), // cross-page duplicate after trim
			newCard("", nil, cardOpts{noTitle: true}),
			newCard("Food Fair", nil, cardOpts{}),
		},
		3: {
			newCard("art walk", nil, cardOpts{}), // different case is a new event
		},
	}}

	var logs bytes.Buffer
	obs := &countingObserver{}
	r := &Runner{Log: logger.New(logger.LevelDebug, &logs), Observer: obs}

	res, err := r.Run(context.Background(), 3, src)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"Jazz Night", "Art Walk", "Food Fair", "art walk"}
	if diff := cmp.Diff(want, titles(res)); diff != "" {
		t.Errorf("Run() titles mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{1, 2, 3}, src.visited); diff != "" {
		t.Errorf("visited pages mismatch (-want +got):\n%s", diff)
	}

	wantStats := Stats{Accepted: 4, Duplicates: 2, Failures: 1}
	if res.Stats != wantStats {
		t.Errorf("Stats = %+v, want %+v", res.Stats, wantStats)
	}
	if res.Pages != 3 {
		t.Errorf("Pages = %d, want 3", res.Pages)
	}

	if obs.outcomes[OutcomeAccepted] != 4 || obs.outcomes[OutcomeDuplicate] != 2 || obs.outcomes[OutcomeFailed] != 1 {
		t.Errorf("observer outcomes = %v", obs.outcomes)
	}
	if len(obs.pages) != 3 {
		t.Errorf("observer saw %d pages, want 3", len(obs.pages))
	}

	if !strings.Contains(logs.String(), "Failed to parse event") {
		t.Errorf("expected card failure to be logged, got:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), `"page":2`) {
		t.Errorf("expected page field in logs, got:\n%s", logs.String())
	}
}

func TestRun_NoDuplicateTitles(t *testing.T) {
	names := []string{"A", "B", "A", "C", "B", "A"}
	pages := map[int][]*fakeElement{}
	for i, n := range names {
		page := i%3 + 1
		pages[page] = append(pages[page], newCard(n, nil, cardOpts{}))
	}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(context.Background(), 3, &fakeSource{pages: pages})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	seen := map[string]bool{}
	for _, rec := range res.Records {
		if seen[rec.Title] {
			t.Errorf("duplicate title %q in output", rec.Title)
		}
		seen[rec.Title] = true
	}
	if len(res.Records) != 3 {
		t.Errorf("got %d records, want 3", len(res.Records))
	}
}

func TestRun_ZeroPages(t *testing.T) {
	src := &fakeSource{pages: map[int][]*fakeElement{1: {newCard("A", nil, cardOpts{})}}}

	res, err := (&Runner{}).Run(context.Background(), 0, src)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(src.visited) != 0 {
		t.Errorf("Run(0) visited pages %v, want none", src.visited)
	}
	if len(res.Records) != 0 {
		t.Errorf("Run(0) returned %d records, want 0", len(res.Records))
	}
	if res.Records == nil {
		t.Error("Run(0) records should be an empty slice, not nil")
	}
}

func TestRun_NavigationFailure(t *testing.T) {
	netErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	src := &fakeSource{
		pages: map[int][]*fakeElement{
			1: {newCard("A", nil, cardOpts{})},
			3: {newCard("C", nil, cardOpts{})},
		},
		pageErr: map[int]error{2: netErr},
	}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(context.Background(), 3, src)
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !errors.Is(err, ErrNavigation) || !errors.Is(err, netErr) {
		t.Errorf("Run() error = %v, want ErrNavigation wrapping the cause", err)
	}
	if !IsFatal(err) {
		t.Error("navigation failure should be fatal")
	}

	var pageErr *PageError
	if !errors.As(err, &pageErr) || pageErr.Page != 2 {
		t.Errorf("Run() error = %#v, want *PageError for page 2", err)
	}

	if diff := cmp.Diff([]int{1, 2}, src.visited); diff != "" {
		t.Errorf("visited pages mismatch (-want +got):\n%s", diff)
	}

	// records from page 1 are returned for the caller's export policy
	if diff := cmp.Diff([]string{"A"}, titles(res)); diff != "" {
		t.Errorf("partial records mismatch (-want +got):\n%s", diff)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1", res.Pages)
	}
}

func TestRun_SessionClosedIsFatal(t *testing.T) {
	dead := newCard("Dead", nil, cardOpts{})
	dead.children[TitleSelector][0].textErr = ErrSessionClosed

	src := &fakeSource{pages: map[int][]*fakeElement{
		1: {newCard("A", nil, cardOpts{}), dead, newCard("B", nil, cardOpts{})},
		2: {newCard("C", nil, cardOpts{})},
	}}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(context.Background(), 2, src)
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Run() error = %v, want ErrSessionClosed", err)
	}

	var cardErr *CardError
	if !errors.As(err, &cardErr) || cardErr.Page != 1 || cardErr.Index != 1 {
		t.Errorf("Run() error = %v, want card error at page 1 index 1", err)
	}
	if diff := cmp.Diff([]string{"A"}, titles(res)); diff != "" {
		t.Errorf("partial records mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CardTimeoutIsNotFatal(t *testing.T) {
	slow := newCard("Slow", []string{"7pm"}, cardOpts{})
	slow.children[ParagraphSelector][0].textErr = context.DeadlineExceeded

	src := &fakeSource{pages: map[int][]*fakeElement{
		1: {slow, newCard("B", nil, cardOpts{})},
		2: {newCard("C", nil, cardOpts{})},
	}}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(context.Background(), 2, src)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "C"}, titles(res)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, src.visited); diff != "" {
		t.Errorf("visited pages mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", res.Stats.Failures)
	}
}

func TestRun_CancelledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stopped := newCard("Stopped", nil, cardOpts{})
	stopped.children[TitleSelector][0].textErr = context.Canceled

	src := &fakeSource{pages: map[int][]*fakeElement{
		1: {newCard("A", nil, cardOpts{}), stopped, newCard("B", nil, cardOpts{})},
		2: {newCard("C", nil, cardOpts{})},
	}}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(ctx, 2, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if diff := cmp.Diff([]string{"A"}, titles(res)); diff != "" {
		t.Errorf("partial records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, src.visited); diff != "" {
		t.Errorf("visited pages mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_MissingHrefStillProducesRecord(t *testing.T) {
	src := &fakeSource{pages: map[int][]*fakeElement{
		1: {
			newCard("NoHref", nil, cardOpts{attrs: map[string]string{AttrLocation: "Singapore"}}),
			newCard("NoHref", nil, cardOpts{}),
		},
	}}

	res, err := (&Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}).Run(context.Background(), 1, src)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if rec := res.Records[0]; rec.Title != "NoHref" || rec.URL != "" {
		t.Errorf("record = %q/%q, want NoHref with empty URL", rec.Title, rec.URL)
	}
	want := Stats{Accepted: 1, Duplicates: 1}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
}

func TestRun_FreshStatePerRun(t *testing.T) {
	src := &fakeSource{pages: map[int][]*fakeElement{1: {newCard("A", nil, cardOpts{})}}}
	r := &Runner{Log: logger.New(logger.LevelError, &bytes.Buffer{})}

	for i := 0; i < 2; i++ {
		res, err := r.Run(context.Background(), 1, src)
		if err != nil {
			t.Fatalf("Run() #%d error: %v", i, err)
		}
		if len(res.Records) != 1 {
			t.Errorf("Run() #%d returned %d records, want 1", i, len(res.Records))
		}
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate", ErrDuplicate, false},
		{"card failure", &CardError{Stage: StageTitle, Err: ErrNotFound}, false},
		{"navigation", &PageError{Page: 1, Err: errors.New("timeout")}, true},
		{"session closed in card", &CardError{Stage: StageParagraph, Err: ErrSessionClosed}, true},
		{"query deadline in card", &CardError{Stage: StageTitle, Err: context.DeadlineExceeded}, false},
		{"canceled", context.Canceled, false},
		{"navigation deadline", &PageError{Page: 1, Err: context.DeadlineExceeded}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
