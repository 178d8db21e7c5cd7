package citations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
)

// Calculator computes month-over-month citation increases from the raw
// event list served by the citation feed.
type Calculator struct {
	feed   ports.CitationFeed
	logger *slog.Logger
}

// NewCalculator wires the citation feed adapter.
func NewCalculator(feed ports.CitationFeed, logger *slog.Logger) *Calculator {
	return &Calculator{feed: feed, logger: logger}
}

// Increase fetches all citation events for docID and counts how many existed
// at each boundary. A feed failure surfaces as an error; it is never
// reported as a zero count. Events without a creation date are tallied apart
// from events whose creation date does not parse; both are excluded from the
// counts.
func (c *Calculator) Increase(ctx context.Context, docID string, bounds Boundaries) (domain.CitationDelta, error) {
	if strings.TrimSpace(docID) == "" {
		return domain.CitationDelta{}, fmt.Errorf("empty document identifier")
	}
	if c.feed == nil {
		return domain.CitationDelta{}, fmt.Errorf("citation feed is not configured")
	}

	events, err := c.feed.Events(ctx, docID)
	if err != nil {
		return domain.CitationDelta{}, fmt.Errorf("fetch citations for %s: %w", docID, err)
	}

	var delta domain.CitationDelta
	var noCreation, unparseable int
	for _, event := range events {
		if strings.TrimSpace(event.Creation) == "" {
			noCreation++
			continue
		}

		created, parseErr := ParseCreationDate(event.Creation)
		if parseErr != nil {
			unparseable++
			c.warn("skip citation event", "doc_id", docID, "creation", event.Creation, "error", parseErr)
			continue
		}

		if !created.After(bounds.EndOfLastMonth) {
			delta.EndCount++
		}
		if !created.After(bounds.EndOfPreviousMonth) {
			delta.StartCount++
		}
	}

	delta.Increase = delta.EndCount - delta.StartCount
	c.debug("citation counts",
		"doc_id", docID,
		"events", len(events),
		"end_count", delta.EndCount,
		"start_count", delta.StartCount,
		"no_creation", noCreation,
		"unparseable", unparseable)

	return delta, nil
}

func (c *Calculator) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Calculator) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
