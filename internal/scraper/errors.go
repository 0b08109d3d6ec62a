package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Element.Find when no descendant matches.
	ErrNotFound = errors.New("element not found")

	// ErrDuplicate marks a card whose title was already produced in this run.
	// It is a "no record" result, not a failure.
	ErrDuplicate = errors.New("duplicate event title")

	// ErrCardExtraction marks a recoverable failure reading a single card.
	ErrCardExtraction = errors.New("card extraction failed")

	// ErrNavigation marks a page the source could not produce. Fatal.
	ErrNavigation = errors.New("page navigation failed")

	// ErrSessionClosed is returned by sources whose browser or HTTP session
	// is gone. Fatal even when it surfaces while reading a card.
	ErrSessionClosed = errors.New("browsing session closed")
)

// CardError describes why one card produced no record
type CardError struct {
	Page  int
	Index int
	Stage string // title, anchor, attribute or paragraph
	Err   error
}

func (e *CardError) Error() string {
	return fmt.Sprintf("page %d card %d: reading %s: %v", e.Page, e.Index, e.Stage, e.Err)
}

// Unwrap exposes both ErrCardExtraction and the cause to errors.Is
func (e *CardError) Unwrap() []error {
	return []error{ErrCardExtraction, e.Err}
}

// PageError describes a page the source failed to produce
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

// Unwrap exposes both ErrNavigation and the cause to errors.Is
func (e *PageError) Unwrap() []error {
	return []error{ErrNavigation, e.Err}
}

// IsFatal reports whether err must stop the run. Single-card failures and
// duplicates are not fatal; navigation failures and closed sessions are.
// Runner.Run also stops once its own context is done.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNavigation) || errors.Is(err, ErrSessionClosed)
}
