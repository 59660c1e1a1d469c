package scraper

import (
	"strconv"
	"strings"
)

// ParseWeeks expands a week-range expression such as "12-14,16" into the flat
// list of week numbers it denotes. Tokens are single integers or inclusive
// ascending ranges, separated by commas; whitespace around tokens and hyphens
// is ignored. An empty expression denotes no weeks and is not an error.
// Duplicate weeks in the expression are preserved; deduplication is the
// sink's job via the event uid.
func ParseWeeks(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	var weeks []int
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if lo, hi, isRange := strings.Cut(token, "-"); isRange {
			first, errLo := strconv.Atoi(strings.TrimSpace(lo))
			last, errHi := strconv.Atoi(strings.TrimSpace(hi))
			if errLo != nil || errHi != nil || first > last {
				return nil, &ParseError{Kind: MalformedWeekRange, Value: token}
			}
			for w := first; w <= last; w++ {
				weeks = append(weeks, w)
			}
			continue
		}
		w, err := strconv.Atoi(token)
		if err != nil {
			return nil, &ParseError{Kind: MalformedWeekRange, Value: token}
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}
