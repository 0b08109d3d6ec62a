// Package scraper implements the listing crawl pipeline for event cards.
//
// A Runner walks page indices 1..N in order, asks a PageSource for each page's
// rendered cards, and hands every card to an Extractor. The Extractor reads the
// card's title, link attributes and paragraph fragments, sorts the fragments
// into urgency, schedule, price and host with Classify, and rejects titles the
// run has already produced. A Collector owns the seen-title set and the
// accepted records for exactly one run.
//
// Card failures are recovered per card. Page navigation and browser session
// failures end the run.
package scraper
