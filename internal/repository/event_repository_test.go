package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naykakashima/timetable-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListEventsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "uid", "title", "description", "location", "start_time", "end_time", "week_number", "module_code", "created_at", "updated_at"}).
		AddRow("1", "u1", "MA32007-12-1-09:00", "Numerical Analysis", "Lecture | Dr F Bierman", "Fulton G20", now, now.Add(time.Hour), 12, "MA32007", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, uid, title, description, location, start_time, end_time, week_number, module_code, created_at, updated_at FROM timetable_events WHERE user_id = $1 ORDER BY start_time ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	events, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "MA32007-12-1-09:00", events[0].UID)
	assert.Equal(t, 12, events[0].WeekNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO timetable_events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.TimetableEvent{UserID: "u1", UID: "MA32007-12-1-09:00", Title: "Numerical Analysis"}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEventUsesConflictTarget(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, uid) DO UPDATE SET")).WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.TimetableEvent{UserID: "u1", UID: "MA32007-12-1-09:00"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_events WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByUser(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
