package scraper

import (
	"strings"
)

// urgencyPhrases are the badge texts Eventbrite shows on busy events.
// Matched against the whole lowercased fragment.
var urgencyPhrases = map[string]struct{}{
	"almost full":    {},
	"going fast":     {},
	"sales end soon": {},
	"just added":     {},
}

// Fields holds the classified card fragments. A nil field was not matched
// by any fragment.
type Fields struct {
	Urgency  *string
	Schedule *string
	Price    *string
	Host     *string
}

// Classify sorts card text fragments into urgency, schedule, price and host.
//
// Each fragment goes to the first bucket whose rule it matches:
//   - urgency: the lowercased fragment is an urgency phrase
//   - schedule: the lowercased fragment contains "am" or "pm"
//   - price: the fragment contains "$"
//   - host: anything else
//
// A bucket keeps only the last fragment assigned to it.
func Classify(fragments []string) Fields {
	var f Fields
	for _, text := range fragments {
		lower := strings.ToLower(text)

		switch {
		case isUrgency(lower):
			f.Urgency = &text
		case strings.Contains(lower, "am") || strings.Contains(lower, "pm"):
			f.Schedule = &text
		case strings.Contains(text, "$"):
			f.Price = &text
		default:
			f.Host = &text
		}
	}
	return f
}

func isUrgency(lower string) bool {
	_, ok := urgencyPhrases[lower]
	return ok
}
