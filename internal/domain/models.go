package domain

// Domain contains core models shared by the extraction pipeline and the crawler.

// RawDocument is the fetched markup of one feed entry.
// URL is the requested link and the store key; FinalURL is where redirects ended up.
type RawDocument struct {
	URL      string
	FinalURL string
	HTML     []byte
}

// BaseURL returns the URL relative links in the document resolve against.
func (d RawDocument) BaseURL() string {
	if d.FinalURL != "" {
		return d.FinalURL
	}
	return d.URL
}

// Dateline is the decomposed leading phrase of a press release,
// e.g. "EAST PEORIA, Ill., Oct. 24, 2011 /PRNewswire/ --".
// Day is not checked against the month length.
type Dateline struct {
	Location    string
	Month       int
	Day         int
	Year        int
	WireService string
}

// Record is the structured output for one press release.
// Company, Location, Topics and Language are empty when unresolved.
type Record struct {
	URL      string `json:"url"`
	Date     int64  `json:"date"` // epoch milliseconds
	Title    string `json:"title"`
	Company  string `json:"company"`
	Text     string `json:"text"`
	Topics   string `json:"topics"` // comma-joined, document order
	Location string `json:"location"`
	Language string `json:"language"`
}
