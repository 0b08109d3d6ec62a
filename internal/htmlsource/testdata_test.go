package htmlsource

// listingPage renders a listing page in Eventbrite's card markup
func listingPage(cards ...string) string {
	html := `<html><body><ul class="search-results">`
	for _, c := range cards {
		html += c
	}
	return html + `</ul></body></html>`
}

func card(title, href string, paragraphs ...string) string {
	html := `<li><section class="event-card-details">` +
		`<a class="event-card-link" href="` + href + `" data-event-location="Singapore" data-event-paid-status="paid" data-event-category="Music">` +
		`<h3>` + title + `</h3></a>`
	for _, p := range paragraphs {
		html += `<p>` + p + `</p>`
	}
	return html + `</section></li>`
}
