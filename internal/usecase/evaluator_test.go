package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CitationWatch/internal/citations"
	"CitationWatch/internal/domain"
)

type fakeCalculator struct {
	increases map[string]int
	failing   map[string]bool
}

func (f *fakeCalculator) Increase(ctx context.Context, docID string, bounds citations.Boundaries) (domain.CitationDelta, error) {
	if f.failing[docID] {
		return domain.CitationDelta{}, errors.New("feed unavailable")
	}
	n := f.increases[docID]
	return domain.CitationDelta{EndCount: n, Increase: n}, nil
}

func evalBounds() citations.Boundaries {
	return citations.Boundaries{
		EndOfLastMonth:     time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC),
		EndOfPreviousMonth: time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestEvaluatorCountsAndCandidates(t *testing.T) {
	t.Parallel()

	calc := &fakeCalculator{
		increases: map[string]int{
			"10.1/spike":   15,
			"10.1/at":      10,
			"10.1/above":   11,
			"10.1/zero":    0,
			"10.1/small":   3,
			"10.1/shrunk":  -2,
			"10.1/failing": 99,
		},
		failing: map[string]bool{"10.1/failing": true},
	}

	works := []domain.Work{
		{ID: "w1", DocID: "10.1/spike", Title: "Spiking work"},
		{ID: "w2", DocID: "10.1/at", Title: "At threshold"},
		{ID: "w3", DocID: "10.1/above", Title: "Just above"},
		{ID: "w4", DocID: "10.1/zero"},
		{ID: "w5", DocID: "10.1/small"},
		{ID: "w6", DocID: "10.1/shrunk"},
		{ID: "w7"},
		{ID: "w8", DocID: "10.1/failing"},
	}

	ev := NewEvaluator(calc, 10, nil)
	stats, candidates := ev.Run(context.Background(), works, evalBounds())

	if stats.Total != 8 {
		t.Fatalf("total = %d, want 8", stats.Total)
	}
	if stats.MissingDocID != 1 {
		t.Fatalf("missing doc id = %d, want 1", stats.MissingDocID)
	}
	if stats.FeedFailures != 1 {
		t.Fatalf("feed failures = %d, want 1", stats.FeedFailures)
	}
	if stats.ZeroIncrease != 1 {
		t.Fatalf("zero increase = %d, want 1", stats.ZeroIncrease)
	}
	if stats.PositiveIncrease != 4 {
		t.Fatalf("positive increase = %d, want 4", stats.PositiveIncrease)
	}
	if stats.Spikes != 2 {
		t.Fatalf("spikes = %d, want 2", stats.Spikes)
	}

	// A spike needs a strictly greater increase, so 10 does not qualify.
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].WorkID != "w1" || candidates[1].WorkID != "w3" {
		t.Fatalf("unexpected candidate order: %s, %s", candidates[0].WorkID, candidates[1].WorkID)
	}
	for _, candidate := range candidates {
		if candidate.DetectedMonth != "2026-07" {
			t.Fatalf("detected month = %s, want 2026-07", candidate.DetectedMonth)
		}
	}

	// The negative increase lands in the distribution but in no counter.
	if len(stats.Increases) != 6 {
		t.Fatalf("distribution size = %d, want 6", len(stats.Increases))
	}
	peak, ok := stats.MaxIncrease()
	if !ok || peak != 15 {
		t.Fatalf("max increase = %d (%v), want 15", peak, ok)
	}
	top := stats.TopIncreases(3)
	if len(top) != 3 || top[0] != 15 || top[1] != 11 || top[2] != 10 {
		t.Fatalf("unexpected top increases: %v", top)
	}
}

func TestEvaluatorEmptyRun(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(&fakeCalculator{}, 10, nil)
	stats, candidates := ev.Run(context.Background(), nil, evalBounds())

	if stats.Total != 0 || len(candidates) != 0 {
		t.Fatalf("unexpected results for empty run: %+v, %d candidates", stats, len(candidates))
	}
	if _, ok := stats.MaxIncrease(); ok {
		t.Fatalf("max increase reported for empty distribution")
	}
}
