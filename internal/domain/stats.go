package domain

import "sort"

// RunStats aggregates the outcome of one detection pass. A value is built
// per run and handed around by copy; nothing mutates it afterwards.
type RunStats struct {
	Total            int
	MissingDocID     int
	FeedFailures     int
	ZeroIncrease     int
	PositiveIncrease int
	Spikes           int
	Increases        []int
}

// MaxIncrease returns the largest computed increase; false when no work
// produced a usable count.
func (s RunStats) MaxIncrease() (int, bool) {
	if len(s.Increases) == 0 {
		return 0, false
	}

	peak := s.Increases[0]
	for _, v := range s.Increases[1:] {
		if v > peak {
			peak = v
		}
	}
	return peak, true
}

// TopIncreases returns up to n increases in descending order.
func (s RunStats) TopIncreases(n int) []int {
	if n <= 0 || len(s.Increases) == 0 {
		return nil
	}

	sorted := make([]int, len(s.Increases))
	copy(sorted, s.Increases)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
