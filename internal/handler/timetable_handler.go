package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/naykakashima/timetable-api/internal/models"
	"github.com/naykakashima/timetable-api/internal/service"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
	"github.com/naykakashima/timetable-api/pkg/response"
)

type timetableService interface {
	Import(ctx context.Context, userID, studentID string) ([]models.TimetableEvent, error)
	ListByUser(ctx context.Context, userID string) ([]models.TimetableEvent, error)
	CreateEvent(ctx context.Context, userID string, event *models.TimetableEvent) error
}

type exportService interface {
	Export(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportResult, error)
}

type userService interface {
	GetByID(ctx context.Context, id string) (*models.UserInfo, error)
}

// TimetableHandler wires HTTP endpoints to the timetable and export services.
type TimetableHandler struct {
	timetable timetableService
	exports   exportService
	users     userService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(timetable timetableService, exports exportService, users userService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, exports: exports, users: users}
}

// Import godoc
// @Summary Import timetable
// @Description Fetch the upstream timetable for the authenticated user and store its events
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/import [post]
func (h *TimetableHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if profile.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "account has no linked student id"))
		return
	}

	events, err := h.timetable.Import(c.Request.Context(), claims.UserID, profile.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, map[string]interface{}{"imported": len(events)})
}

// ListEvents godoc
// @Summary List events
// @Description Return the authenticated user's events ordered by start time
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/events [get]
func (h *TimetableHandler) ListEvents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	events, err := h.timetable.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events)
}

type createEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	ModuleCode  string `json:"module_code"`
}

func (r createEventRequest) toModel() (*models.TimetableEvent, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be RFC3339")
	}
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	_, week := start.ISOWeek()
	return &models.TimetableEvent{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartTime:   start,
		EndTime:     end,
		WeekNumber:  week,
		ModuleCode:  r.ModuleCode,
	}, nil
}

// CreateEvent godoc
// @Summary Create event
// @Description Store a manually entered event for the authenticated user
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/events [post]
func (h *TimetableHandler) CreateEvent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.timetable.CreateEvent(c.Request.Context(), claims.UserID, event); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// ExportEvents godoc
// @Summary Export events
// @Description Download the authenticated user's events as CSV, PDF or ICS
// @Tags Timetable
// @Produce octet-stream
// @Param format query string true "Export format" Enums(csv, pdf, ics)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/events/export [get]
func (h *TimetableHandler) ExportEvents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Export(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
