// Package cli implements the command-line interface for eventscrape.
//
// The cli package provides the Cobra root command, which takes a single
// --pages flag. It resolves configuration, opens the configured page source
// (headless Chrome or plain HTTP), runs the crawl, and exports the results to
// CSV and JSON. Single-card failures are logged and skipped; navigation,
// browser session and export failures end the run with a non-zero exit.
package cli
