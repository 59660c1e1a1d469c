package scraper

import "fmt"

// ParseErrorKind categorizes unrecoverable defects in a timetable document.
type ParseErrorKind string

const (
	UnknownWeekday     ParseErrorKind = "UNKNOWN_WEEKDAY"
	MalformedTime      ParseErrorKind = "MALFORMED_TIME"
	MalformedWeekRange ParseErrorKind = "MALFORMED_WEEK_RANGE"
)

// ParseError aborts an extraction. Accumulated events never survive one;
// extraction is all-or-nothing per document.
type ParseError struct {
	Kind  ParseErrorKind
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timetable parse error (%s): %q", e.Kind, e.Value)
}

// FetchError wraps failures retrieving or reading the upstream document.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch timetable %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
