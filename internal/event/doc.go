// Package event provides the record type produced by a listing crawl.
//
// A Record is one event card flattened into nine fields. Title and URL are
// required; the remaining fields are optional and keep the difference between
// "absent" and "empty" so exporters can write null or an empty cell as their
// format requires. Columns fixes the field order shared by every exporter.
package event
