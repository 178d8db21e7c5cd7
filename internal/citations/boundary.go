package citations

import "time"

// Boundaries is the pair of month-end cut-off dates a detection run compares
// cumulative citation counts against.
type Boundaries struct {
	EndOfLastMonth     time.Time
	EndOfPreviousMonth time.Time
}

// MonthBoundaries derives the boundary pair from the current wall-clock
// date: the last day of the month before now, and the last day of the month
// before that. Both are expressed as UTC calendar dates so they compare
// cleanly against parsed creation dates, which carry no zone.
func MonthBoundaries(now time.Time) Boundaries {
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfLast := firstOfCurrent.AddDate(0, 0, -1)

	firstOfLast := time.Date(endOfLast.Year(), endOfLast.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfPrevious := firstOfLast.AddDate(0, 0, -1)

	return Boundaries{EndOfLastMonth: endOfLast, EndOfPreviousMonth: endOfPrevious}
}

// DetectedMonth labels the month alerts from this run are recorded under.
func (b Boundaries) DetectedMonth() string {
	return b.EndOfLastMonth.Format("2006-01")
}
