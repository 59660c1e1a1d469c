package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Weekday is an ISO weekday ordinal, Monday = 1 through Sunday = 7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

// ParseWeekday resolves a full English day name, case-insensitively.
func ParseWeekday(text string) (Weekday, error) {
	if day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(text))]; ok {
		return day, nil
	}
	return 0, &ParseError{Kind: UnknownWeekday, Value: text}
}

func (d Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return names[d-1]
}

// timeOfDayPattern accepts 24-hour H:mm with an optional leading zero on the
// hour and exactly two minute digits.
var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// TimeOfDay is a wall-clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour H:mm value such as "9:00" or "14:30".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(raw)
	if m == nil {
		return TimeOfDay{}, &ParseError{Kind: MalformedTime, Value: raw}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return TimeOfDay{}, &ParseError{Kind: MalformedTime, Value: raw}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String renders the canonical zero-padded HH:MM form used in event uids.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On anchors the time of day to the given calendar date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// RawSession is one recurring class meeting as it appears in a day table,
// before its week range is expanded into dated events.
type RawSession struct {
	Activity    string
	ModuleName  string
	SessionType string
	Start       TimeOfDay
	End         TimeOfDay
	WeeksExpr   string
	Staff       string
	Location    string
}

// ModuleCode is the first whitespace-delimited token of the activity text.
func (s RawSession) ModuleCode() string {
	fields := strings.Fields(s.Activity)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Title is the module display name, falling back to the module code when the
// name column was empty.
func (s RawSession) Title() string {
	if s.ModuleName != "" {
		return s.ModuleName
	}
	return s.ModuleCode()
}

// DaySession tags a raw session with the weekday block it was scraped from.
type DaySession struct {
	Day     Weekday
	Session RawSession
}
