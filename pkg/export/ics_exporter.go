package export

import (
	ics "github.com/arran4/golang-ical"

	"github.com/naykakashima/timetable-api/internal/models"
)

// ICSExporter renders timetable events into an iCalendar document that
// calendar clients can subscribe to or import.
type ICSExporter struct {
	prodID string
}

// NewICSExporter constructs an ICS exporter with the given PRODID.
func NewICSExporter(prodID string) *ICSExporter {
	if prodID == "" {
		prodID = "-//timetable-api//EN"
	}
	return &ICSExporter{prodID: prodID}
}

// Render serialises the events as a VCALENDAR.
func (e *ICSExporter) Render(events []models.TimetableEvent, name string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.prodID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	for _, event := range events {
		entry := cal.AddEvent(event.UID)
		entry.SetDtStampTime(event.UpdatedAt)
		entry.SetStartAt(event.StartTime)
		entry.SetEndAt(event.EndTime)
		entry.SetSummary(event.Title)
		if event.Location != "" {
			entry.SetLocation(event.Location)
		}
		if event.Description != "" {
			entry.SetDescription(event.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}
