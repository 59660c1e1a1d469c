package scraper

import (
	"fmt"
	"time"

	"github.com/naykakashima/timetable-api/internal/models"
)

// MondayOfISOWeek returns the Monday of the given ISO 8601 week: weeks run
// Monday to Sunday and week 1 is the week containing the year's first
// Thursday.
func MondayOfISOWeek(year, week int) time.Time {
	// January 4 always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7)
}

// UID derives the stable identifier the sink uses to deduplicate repeated
// imports of the same logical occurrence. It is a pure function of its
// arguments and byte-for-byte reproducible across runs.
func UID(moduleCode string, week int, day Weekday, start TimeOfDay) string {
	return fmt.Sprintf("%s-%d-%d-%s", moduleCode, week, int(day), start)
}

// Expand resolves one raw session into concrete events, one per week in its
// range expression. Week numbers are treated as ISO week-of-year indices of
// referenceYear; whether that matches the institution's own academic week
// numbering near year boundaries is an assumption inherited from the source
// system, so callers pin the year explicitly.
//
// End times are anchored to the same date as start times: a session whose end
// reads earlier than its start produces an inverted interval, uncorrected.
func Expand(session RawSession, day Weekday, referenceYear int) ([]models.TimetableEvent, error) {
	weeks, err := ParseWeeks(session.WeeksExpr)
	if err != nil {
		return nil, err
	}

	code := session.ModuleCode()
	events := make([]models.TimetableEvent, 0, len(weeks))
	for _, week := range weeks {
		date := MondayOfISOWeek(referenceYear, week).AddDate(0, 0, int(day)-1)
		events = append(events, models.TimetableEvent{
			UID:         UID(code, week, day, session.Start),
			Title:       session.Title(),
			Description: session.SessionType + " | " + session.Staff,
			Location:    session.Location,
			StartTime:   session.Start.On(date),
			EndTime:     session.End.On(date),
			WeekNumber:  week,
			ModuleCode:  code,
		})
	}
	return events, nil
}
