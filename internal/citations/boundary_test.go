package citations

import (
	"testing"
	"time"
)

func TestMonthBoundariesMidYear(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 25, 14, 30, 0, 0, time.UTC)
	bounds := MonthBoundaries(now)

	wantEnd := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	wantPrev := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	if !bounds.EndOfLastMonth.Equal(wantEnd) {
		t.Fatalf("end of last month = %v, want %v", bounds.EndOfLastMonth, wantEnd)
	}
	if !bounds.EndOfPreviousMonth.Equal(wantPrev) {
		t.Fatalf("end of previous month = %v, want %v", bounds.EndOfPreviousMonth, wantPrev)
	}
	if got := bounds.DetectedMonth(); got != "2026-07" {
		t.Fatalf("detected month = %s, want 2026-07", got)
	}
}

func TestMonthBoundariesJanuaryCrossesYear(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	bounds := MonthBoundaries(now)

	wantEnd := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	wantPrev := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)

	if !bounds.EndOfLastMonth.Equal(wantEnd) {
		t.Fatalf("end of last month = %v, want %v", bounds.EndOfLastMonth, wantEnd)
	}
	if !bounds.EndOfPreviousMonth.Equal(wantPrev) {
		t.Fatalf("end of previous month = %v, want %v", bounds.EndOfPreviousMonth, wantPrev)
	}
	if got := bounds.DetectedMonth(); got != "2025-12" {
		t.Fatalf("detected month = %s, want 2025-12", got)
	}
}

func TestMonthBoundariesAfterFebruary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	bounds := MonthBoundaries(now)

	// 2024 is a leap year.
	wantEnd := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	wantPrev := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	if !bounds.EndOfLastMonth.Equal(wantEnd) {
		t.Fatalf("end of last month = %v, want %v", bounds.EndOfLastMonth, wantEnd)
	}
	if !bounds.EndOfPreviousMonth.Equal(wantPrev) {
		t.Fatalf("end of previous month = %v, want %v", bounds.EndOfPreviousMonth, wantPrev)
	}
}

func TestMonthBoundariesNormalizesZone(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC+13", 13*60*60)
	now := time.Date(2026, time.April, 1, 0, 30, 0, 0, zone)
	bounds := MonthBoundaries(now)

	// The boundary derives from the local calendar date, not the UTC instant.
	wantEnd := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	if !bounds.EndOfLastMonth.Equal(wantEnd) {
		t.Fatalf("end of last month = %v, want %v", bounds.EndOfLastMonth, wantEnd)
	}
}
