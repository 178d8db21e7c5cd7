package citations

import (
	"context"
	"errors"
	"testing"
	"time"

	"CitationWatch/internal/domain"
)

type fakeFeed struct {
	events []domain.CitationEvent
	err    error
	calls  int
}

func (f *fakeFeed) Events(ctx context.Context, docID string) ([]domain.CitationEvent, error) {
	f.calls++
	return f.events, f.err
}

func testBounds() Boundaries {
	return Boundaries{
		EndOfLastMonth:     time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC),
		EndOfPreviousMonth: time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalculatorIncrease(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{events: []domain.CitationEvent{
		// Three citations existed before both boundaries.
		{Citing: "10.1/a", Creation: "2024-01-15"},
		{Citing: "10.1/b", Creation: "2026-05"},
		{Citing: "10.1/c", Creation: "2026-06-30"},
		// Six arrived during July.
		{Citing: "10.1/d", Creation: "2026-07-01"},
		{Citing: "10.1/e", Creation: "2026-07-02"},
		{Citing: "10.1/f", Creation: "2026-07-10"},
		{Citing: "10.1/g", Creation: "2026-07"},
		{Citing: "10.1/h", Creation: "2026-07-30"},
		{Citing: "10.1/i", Creation: "2026-07-31"},
		// Too recent to count at either boundary.
		{Citing: "10.1/j", Creation: "2026-08-01"},
	}}

	calc := NewCalculator(feed, nil)
	delta, err := calc.Increase(context.Background(), "10.1234/test", testBounds())
	if err != nil {
		t.Fatalf("Increase returned error: %v", err)
	}

	if delta.EndCount != 9 {
		t.Fatalf("end count = %d, want 9", delta.EndCount)
	}
	if delta.StartCount != 3 {
		t.Fatalf("start count = %d, want 3", delta.StartCount)
	}
	if delta.Increase != 6 {
		t.Fatalf("increase = %d, want 6", delta.Increase)
	}
}

func TestCalculatorSkipsUnusableEvents(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{events: []domain.CitationEvent{
		{Citing: "10.1/a", Creation: "2026-07-05"},
		{Citing: "10.1/b", Creation: ""},
		{Citing: "10.1/c", Creation: "not-a-date"},
		{Citing: "10.1/d", Creation: "2026-13"},
	}}

	calc := NewCalculator(feed, nil)
	delta, err := calc.Increase(context.Background(), "10.1234/test", testBounds())
	if err != nil {
		t.Fatalf("Increase returned error: %v", err)
	}

	if delta.EndCount != 1 || delta.StartCount != 0 || delta.Increase != 1 {
		t.Fatalf("unexpected delta: %+v", delta)
	}
}

func TestCalculatorPropagatesFeedError(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{err: errors.New("boom")}

	calc := NewCalculator(feed, nil)
	if _, err := calc.Increase(context.Background(), "10.1234/test", testBounds()); err == nil {
		t.Fatalf("expected error from failing feed")
	}
}

func TestCalculatorRejectsEmptyDocID(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{}

	calc := NewCalculator(feed, nil)
	if _, err := calc.Increase(context.Background(), "  ", testBounds()); err == nil {
		t.Fatalf("expected error for empty doc id")
	}
	if feed.calls != 0 {
		t.Fatalf("feed was called %d times for an empty doc id", feed.calls)
	}
}
