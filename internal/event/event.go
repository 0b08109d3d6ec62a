package event

import "strings"

// Column keys in export order
const (
	KeyTitle      = "Title"
	KeyURL        = "URL"
	KeyLocation   = "Location"
	KeyPaidStatus = "Paid Status"
	KeyCategory   = "Category"
	KeyUrgency    = "Urgency"
	KeySchedule   = "Date & Time"
	KeyPrice      = "Price"
	KeyHost       = "Host"
)

// Columns is the fixed field order used for CSV headers and JSON objects
var Columns = []string{
	KeyTitle,
	KeyURL,
	KeyLocation,
	KeyPaidStatus,
	KeyCategory,
	KeyUrgency,
	KeySchedule,
	KeyPrice,
	KeyHost,
}

// Record represents one event card extracted from a listing page
type Record struct {
	Title      string  `json:"Title"`
	URL        string  `json:"URL"`
	Location   *string `json:"Location"`
	PaidStatus *string `json:"Paid Status"`
	Category   *string `json:"Category"`
	Urgency    *string `json:"Urgency"`
	Schedule   *string `json:"Date & Time"`
	Price      *string `json:"Price"`
	Host       *string `json:"Host"`
}

// NormalizeTitle returns the dedup key for a title. Only surrounding
// whitespace is removed; case is preserved.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// Values returns the record's fields in Columns order. Absent optional
// fields are returned as nil.
func (r *Record) Values() []*string {
	title, url := r.Title, r.URL
	return []*string{
		&title,
		&url,
		r.Location,
		r.PaidStatus,
		r.Category,
		r.Urgency,
		r.Schedule,
		r.Price,
		r.Host,
	}
}

// FromValues builds a record from fields in Columns order. Missing trailing
// values are treated as absent.
func FromValues(values []*string) *Record {
	get := func(i int) *string {
		if i < len(values) {
			return values[i]
		}
		return nil
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	return &Record{
		Title:      deref(get(0)),
		URL:        deref(get(1)),
		Location:   get(2),
		PaidStatus: get(3),
		Category:   get(4),
		Urgency:    get(5),
		Schedule:   get(6),
		Price:      get(7),
		Host:       get(8),
	}
}

// String returns a pointer to s, for optional fields
func String(s string) *string {
	return &s
}
