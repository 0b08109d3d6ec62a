package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pfrederiksen/eventscrape/internal/event"
	"github.com/pfrederiksen/eventscrape/internal/storage"
)

// Default output file names
const (
	CSVFile  = "eventbrite.csv"
	JSONFile = "eventbrite.json"
)

// ErrExport marks a failure writing an export destination. Fatal.
var ErrExport = errors.New("export failed")

// Error names the destination that could not be written
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("exporting %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrExport and the cause to errors.Is
func (e *Error) Unwrap() []error {
	return []error{ErrExport, e.Err}
}

// WriteCSV writes a header row followed by one row per record
func WriteCSV(w io.Writer, records []*event.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(event.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(event.Columns))
	for i, rec := range records {
		for j, v := range rec.Values() {
			if v == nil {
				row[j] = ""
			} else {
				row[j] = *v
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV. Empty optional cells come back
// as nil, so the empty-string and absent encodings are not distinguished.
func ReadCSV(r io.Reader) ([]*event.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(event.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, key := range event.Columns {
		if header[i] != key {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], key)
		}
	}

	records := make([]*event.Record, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(records)+1, err)
		}

		values := make([]*string, len(row))
		for i, cell := range row {
			if cell != "" {
				values[i] = &cell
			}
		}
		records = append(records, event.FromValues(values))
	}

	return records, nil
}

// WriteJSON writes records as an indented JSON array. An empty input is [].
func WriteJSON(w io.Writer, records []*event.Record) error {
	if records == nil {
		records = []*event.Record{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(records)
}

// Files writes records to the CSV and JSON destinations in store. Empty
// names use CSVFile and JSONFile.
func Files(store *storage.Storage, records []*event.Record, csvName, jsonName string) error {
	if csvName == "" {
		csvName = CSVFile
	}
	if jsonName == "" {
		jsonName = JSONFile
	}

	if err := store.WriteFile(csvName, func(w io.Writer) error {
		return WriteCSV(w, records)
	}); err != nil {
		return &Error{Path: store.Path(csvName), Err: err}
	}

	if err := store.WriteFile(jsonName, func(w io.Writer) error {
		return WriteJSON(w, records)
	}); err != nil {
		return &Error{Path: store.Path(jsonName), Err: err}
	}

	return nil
}
