// Package export writes crawl results as CSV and as a JSON array.
//
// Both formats use the column order and keys defined by event.Columns.
// Absent optional fields are written as empty CSV cells and as JSON null.
package export
