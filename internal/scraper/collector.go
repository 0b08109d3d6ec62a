package scraper

import (
	"github.com/pfrederiksen/eventscrape/internal/event"
)

// Collector owns the seen-title set and accepted records for one run.
// It is not safe for concurrent use; a run is sequential.
type Collector struct {
	seen       map[string]struct{}
	records    []*event.Record
	duplicates int
	failures   int
}

// Stats summarizes the outcomes a Collector has seen
type Stats struct {
	Accepted   int
	Duplicates int
	Failures   int
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		seen: make(map[string]struct{}),
	}
}

// Seen reports whether title has been registered in this run
func (c *Collector) Seen(title string) bool {
	_, ok := c.seen[event.NormalizeTitle(title)]
	return ok
}

// Register adds title to the seen set. Registration is permanent for the run.
func (c *Collector) Register(title string) {
	c.seen[event.NormalizeTitle(title)] = struct{}{}
}

// Accept appends rec to the output. A nil record is rejected.
func (c *Collector) Accept(rec *event.Record) bool {
	if rec == nil {
		return false
	}
	c.records = append(c.records, rec)
	return true
}

func (c *Collector) noteDuplicate() { c.duplicates++ }
func (c *Collector) noteFailure()   { c.failures++ }

// Records returns the accepted records in arrival order
func (c *Collector) Records() []*event.Record {
	out := make([]*event.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of seen titles
func (c *Collector) Len() int {
	return len(c.seen)
}

// Stats returns accepted, duplicate and failed card counts
func (c *Collector) Stats() Stats {
	return Stats{
		Accepted:   len(c.records),
		Duplicates: c.duplicates,
		Failures:   c.failures,
	}
}
