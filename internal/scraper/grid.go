package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// weekdayMarkerSelector matches the label element that anchors each day's
// session table in the reporting page.
const weekdayMarkerSelector = "span.labelone"

// sessionRowArity is the minimum number of columns a row must have to be a
// session row. Shorter rows are layout noise and are skipped.
const sessionRowArity = 9

// sessionRow names the fixed column layout of a day table. Column 5 is
// reserved by the upstream report and never read.
type sessionRow struct {
	Activity    string // column 0
	ModuleName  string // column 1
	SessionType string // column 2
	StartTime   string // column 3
	EndTime     string // column 4
	Weeks       string // column 6
	Staff       string // column 7
	Location    string // column 8
}

// decodeSessionRow extracts the named columns from a table row. It reports
// false for rows below the expected arity.
func decodeSessionRow(cells *goquery.Selection) (sessionRow, bool) {
	if cells.Length() < sessionRowArity {
		return sessionRow{}, false
	}
	text := func(i int) string {
		return strings.TrimSpace(cells.Eq(i).Text())
	}
	return sessionRow{
		Activity:    text(0),
		ModuleName:  text(1),
		SessionType: text(2),
		StartTime:   text(3),
		EndTime:     text(4),
		Weeks:       text(6),
		Staff:       text(7),
		Location:    text(8),
	}, true
}

func (r sessionRow) toSession() (RawSession, error) {
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return RawSession{}, err
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return RawSession{}, err
	}
	return RawSession{
		Activity:    r.Activity,
		ModuleName:  r.ModuleName,
		SessionType: r.SessionType,
		Start:       start,
		End:         end,
		WeeksExpr:   r.Weeks,
		Staff:       r.Staff,
		Location:    r.Location,
	}, nil
}

type dayTable struct {
	day   Weekday
	table *goquery.Selection
}

// collectDayTables associates each weekday marker with the table that follows
// it. Markers without a following table are dropped; an unrecognizable day
// name fails the whole pass.
func collectDayTables(doc *goquery.Document) ([]dayTable, error) {
	var pairs []dayTable
	var firstErr error
	doc.Find(weekdayMarkerSelector).EachWithBreak(func(_ int, marker *goquery.Selection) bool {
		day, err := ParseWeekday(marker.Text())
		if err != nil {
			firstErr = err
			return false
		}
		table := marker.Parent().Next()
		if !table.Is("table") {
			return true
		}
		pairs = append(pairs, dayTable{day: day, table: table})
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return pairs, nil
}

// ParseGrid walks the document and yields raw sessions in document order:
// weekday blocks as they appear, then rows within each block. The first row
// of every table is a header and is skipped.
func ParseGrid(doc *goquery.Document) ([]DaySession, error) {
	pairs, err := collectDayTables(doc)
	if err != nil {
		return nil, err
	}

	var sessions []DaySession
	for _, pair := range pairs {
		var rowErr error
		pair.table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
			if i == 0 {
				return true
			}
			raw, ok := decodeSessionRow(row.Find("td"))
			if !ok {
				return true
			}
			session, err := raw.toSession()
			if err != nil {
				rowErr = err
				return false
			}
			sessions = append(sessions, DaySession{Day: pair.day, Session: session})
			return true
		})
		if rowErr != nil {
			return nil, rowErr
		}
	}
	return sessions, nil
}
