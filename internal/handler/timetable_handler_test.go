package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naykakashima/timetable-api/internal/middleware"
	"github.com/naykakashima/timetable-api/internal/models"
	"github.com/naykakashima/timetable-api/internal/service"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	importResp   []models.TimetableEvent
	importErr    error
	listResp     []models.TimetableEvent
	listErr      error
	createErr    error
	importCalled bool
	lastStudent  string
	created      *models.TimetableEvent
}

func (m *timetableServiceMock) Import(ctx context.Context, userID, studentID string) ([]models.TimetableEvent, error) {
	m.importCalled = true
	m.lastStudent = studentID
	return m.importResp, m.importErr
}

func (m *timetableServiceMock) ListByUser(ctx context.Context, userID string) ([]models.TimetableEvent, error) {
	return m.listResp, m.listErr
}

func (m *timetableServiceMock) CreateEvent(ctx context.Context, userID string, event *models.TimetableEvent) error {
	m.created = event
	return m.createErr
}

type exportServiceMock struct {
	result *service.ExportResult
	err    error
}

func (m *exportServiceMock) Export(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportResult, error) {
	return m.result, m.err
}

type userServiceMock struct {
	info *models.UserInfo
	err  error
}

func (m *userServiceMock) GetByID(ctx context.Context, id string) (*models.UserInfo, error) {
	return m.info, m.err
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "user@example.com"})
	return c
}

func TestTimetableHandlerImport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{importResp: []models.TimetableEvent{{UID: "MA32007-12-1-09:00"}}}
	users := &userServiceMock{info: &models.UserInfo{ID: "u1", StudentID: "160011223"}}
	handler := NewTimetableHandler(mockSvc, &exportServiceMock{}, users)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/timetable/import", nil)

	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.importCalled)
	assert.Equal(t, "160011223", mockSvc.lastStudent)
}

func TestTimetableHandlerImportWithoutStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	users := &userServiceMock{info: &models.UserInfo{ID: "u1"}}
	handler := NewTimetableHandler(mockSvc, &exportServiceMock{}, users)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/timetable/import", nil)

	handler.Import(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.importCalled)
}

func TestTimetableHandlerImportUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{importErr: appErrors.ErrImportFailed}
	users := &userServiceMock{info: &models.UserInfo{ID: "u1", StudentID: "160011223"}}
	handler := NewTimetableHandler(mockSvc, &exportServiceMock{}, users)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/timetable/import", nil)

	handler.Import(c)
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTimetableHandlerListEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{listResp: []models.TimetableEvent{{UID: "MA32007-12-1-09:00"}}}
	handler := NewTimetableHandler(mockSvc, &exportServiceMock{}, &userServiceMock{})

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/timetable/events", nil)

	handler.ListEvents(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.TimetableEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "MA32007-12-1-09:00", envelope.Data[0].UID)
}

func TestTimetableHandlerListEventsUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{}, &exportServiceMock{}, &userServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/events", nil)

	handler.ListEvents(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerCreateEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := NewTimetableHandler(mockSvc, &exportServiceMock{}, &userServiceMock{})

	payload := []byte(`{"title":"Office hours","start_time":"2025-03-17T09:00:00Z","end_time":"2025-03-17T10:00:00Z","location":"Fulton G20"}`)
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/timetable/events", payload)

	handler.CreateEvent(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mockSvc.created)
	assert.Equal(t, "Office hours", mockSvc.created.Title)
	assert.Equal(t, 12, mockSvc.created.WeekNumber)
}

func TestTimetableHandlerCreateEventRejectsInvertedTimes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{}, &exportServiceMock{}, &userServiceMock{})

	payload := []byte(`{"title":"Office hours","start_time":"2025-03-17T10:00:00Z","end_time":"2025-03-17T09:00:00Z"}`)
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/timetable/events", payload)

	handler.CreateEvent(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &exportServiceMock{result: &service.ExportResult{
		Filename:    "timetable_20250317_090000.csv",
		ContentType: "text/csv",
		Payload:     []byte("Module,Title\n"),
	}}
	handler := NewTimetableHandler(&timetableServiceMock{}, exports, &userServiceMock{})

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/timetable/events/export?format=csv", nil)

	handler.ExportEvents(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
}

func TestTimetableHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &exportServiceMock{err: appErrors.Clone(appErrors.ErrValidation, `unsupported export format "xlsx"`)}
	handler := NewTimetableHandler(&timetableServiceMock{}, exports, &userServiceMock{})

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/timetable/events/export?format=xlsx", nil)

	handler.ExportEvents(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
