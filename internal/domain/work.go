package domain

// Work is a research work discovered for a monitored topic.
type Work struct {
	ID            string
	DocID         string
	Title         string
	Journal       string
	PublishedDate string
	Abstract      string
	Topic         string
}

// CitationEvent is a single incoming citation reported by the citation feed.
type CitationEvent struct {
	Citing   string
	Creation string
}

// CitationDelta captures cumulative citation counts at two month-end
// boundaries and the increase between them. The increase may be negative
// when the feed revises history; it is never clamped.
type CitationDelta struct {
	StartCount int
	EndCount   int
	Increase   int
}
