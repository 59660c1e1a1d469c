package models

import "time"

// TimetableEvent is one concrete class meeting on a specific date, produced
// by expanding a scraped timetable session across its week range.
type TimetableEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	UID         string    `db:"uid" json:"uid"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	WeekNumber  int       `db:"week_number" json:"week_number"`
	ModuleCode  string    `db:"module_code" json:"module_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
