package usecase

import (
	"context"
	"log/slog"

	"CitationWatch/internal/citations"
	"CitationWatch/internal/domain"
)

// progressEvery controls how often the evaluator reports scan progress.
const progressEvery = 50

// CitationCalculator yields the citation increase of one work over the
// completed reporting month.
type CitationCalculator interface {
	Increase(ctx context.Context, docID string, bounds citations.Boundaries) (domain.CitationDelta, error)
}

// Evaluator walks the discovered works one by one, computes each citation
// increase, and collects the works whose increase crosses the alert threshold.
type Evaluator struct {
	calculator CitationCalculator
	threshold  int
	logger     *slog.Logger
}

func NewEvaluator(calculator CitationCalculator, threshold int, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		calculator: calculator,
		threshold:  threshold,
		logger:     logger,
	}
}

// Run evaluates every work sequentially. Works without a document identifier
// and works whose citation lookup fails are counted and skipped; neither ends
// the scan. A spike needs an increase strictly above the threshold.
func (e *Evaluator) Run(ctx context.Context, works []domain.Work, bounds citations.Boundaries) (domain.RunStats, []domain.AlertCandidate) {
	stats := domain.RunStats{Total: len(works)}
	var candidates []domain.AlertCandidate

	for i, work := range works {
		if (i+1)%progressEvery == 0 {
			e.info("scan progress", "scanned", i+1, "total", stats.Total)
		}

		if work.DocID == "" {
			stats.MissingDocID++
			continue
		}

		delta, err := e.calculator.Increase(ctx, work.DocID, bounds)
		if err != nil {
			stats.FeedFailures++
			e.warn("citation lookup failed", "work", work.ID, "doc_id", work.DocID, "error", err)
			continue
		}

		stats.Increases = append(stats.Increases, delta.Increase)
		switch {
		case delta.Increase == 0:
			stats.ZeroIncrease++
		case delta.Increase > 0:
			stats.PositiveIncrease++
		}

		if delta.Increase > e.threshold {
			stats.Spikes++
			e.info("citation spike detected",
				"work", work.ID,
				"doc_id", work.DocID,
				"increase", delta.Increase,
				"title", work.Title,
			)
			candidates = append(candidates, domain.AlertCandidate{
				WorkID:        work.ID,
				DocID:         work.DocID,
				Title:         work.Title,
				Journal:       work.Journal,
				PublishedDate: work.PublishedDate,
				Increase:      delta.Increase,
				DetectedMonth: bounds.DetectedMonth(),
			})
		}
	}

	return stats, candidates
}

func (e *Evaluator) info(msg string, args ...interface{}) {
	if e.logger == nil {
		return
	}
	e.logger.Info(msg, args...)
}

func (e *Evaluator) warn(msg string, args ...interface{}) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg, args...)
}
