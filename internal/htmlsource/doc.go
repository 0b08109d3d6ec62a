// Package htmlsource provides page sources backed by static HTML.
//
// Elements wrap goquery selections. Source fetches listing pages over HTTP
// with colly and is suitable for server-rendered listings, local mirrors and
// test fixtures. It does not execute scripts, so text is whatever the served
// markup contains.
package htmlsource
