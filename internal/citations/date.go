package citations

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseCreationDate turns a citation-event creation string into a UTC
// calendar date. Three granularities are accepted: "2006-01-02",
// "2006-01" (resolved to day 1) and "2006" (resolved to January 1).
// Anything else is unparseable and reported as an error.
func ParseCreationDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	segments := strings.Split(trimmed, "-")
	if len(segments) > 3 {
		return time.Time{}, fmt.Errorf("creation date %q: unsupported shape", raw)
	}

	values := make([]int, len(segments))
	for i, segment := range segments {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return time.Time{}, fmt.Errorf("creation date %q: segment %q is not a number", raw, segment)
		}
		values[i] = n
	}

	year := values[0]
	month, day := 1, 1
	if len(values) > 1 {
		month = values[1]
	}
	if len(values) > 2 {
		day = values[2]
	}

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("creation date %q: component out of range", raw)
	}

	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Year() != year || parsed.Month() != time.Month(month) || parsed.Day() != day {
		return time.Time{}, fmt.Errorf("creation date %q: no such calendar day", raw)
	}

	return parsed, nil
}
