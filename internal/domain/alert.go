package domain

import "time"

// AlertCandidate is a qualified citation spike awaiting persistence.
type AlertCandidate struct {
	WorkID        string
	DocID         string
	Title         string
	Journal       string
	PublishedDate string
	Increase      int
	DetectedMonth string
}

// AlertRecord is a persisted alert together with its delivery lifecycle.
// Records are never deleted; Notified only ever moves from false to true.
type AlertRecord struct {
	ID            string
	WorkID        string
	DocID         string
	Title         string
	Journal       string
	PublishedDate string
	Increase      int
	DetectedMonth string
	Summary       string
	Notified      bool
	CreatedAt     time.Time
}

// InsertOutcome reports how the store handled an alert insert.
type InsertOutcome int

const (
	AlertInserted InsertOutcome = iota + 1
	AlertDeduplicated
)

func (o InsertOutcome) String() string {
	switch o {
	case AlertInserted:
		return "inserted"
	case AlertDeduplicated:
		return "deduplicated"
	default:
		return "unknown"
	}
}

// Digest is a composed notification ready for dispatch.
type Digest struct {
	Subject string
	Body    string
}
