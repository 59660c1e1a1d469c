package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/naykakashima/timetable-api/internal/models"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
	"github.com/naykakashima/timetable-api/pkg/export"
)

// ExportFormat identifies a supported download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
	FormatICS ExportFormat = "ics"
)

type eventLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.TimetableEvent, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type icsRenderer interface {
	Render(events []models.TimetableEvent, name string) ([]byte, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a user's timetable in downloadable formats.
type ExportService struct {
	events eventLister
	csv    csvRenderer
	pdf    pdfRenderer
	ics    icsRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults.
func NewExportService(events eventLister, csv csvRenderer, pdf pdfRenderer, ics icsRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter("")
	}
	return &ExportService{events: events, csv: csv, pdf: pdf, ics: ics, logger: logger}
}

// Export renders the user's events in the requested format.
func (s *ExportService) Export(ctx context.Context, userID string, format ExportFormat) (*ExportResult, error) {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	var payload []byte
	var contentType, ext string

	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(buildEventDataset(events))
		contentType, ext = "text/csv", "csv"
	case FormatPDF:
		payload, err = s.pdf.Render(buildEventDataset(events), "Timetable")
		contentType, ext = "application/pdf", "pdf"
	case FormatICS:
		payload, err = s.ics.Render(events, "Timetable")
		contentType, ext = "text/calendar", "ics"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("timetable_%s.%s", timestamp, ext),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

var eventDatasetHeaders = []string{"Module", "Title", "Description", "Location", "Week", "Start", "End"}

func buildEventDataset(events []models.TimetableEvent) export.Dataset {
	rows := make([]map[string]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, map[string]string{
			"Module":      event.ModuleCode,
			"Title":       event.Title,
			"Description": event.Description,
			"Location":    event.Location,
			"Week":        fmt.Sprintf("%d", event.WeekNumber),
			"Start":       event.StartTime.Format(time.RFC3339),
			"End":         event.EndTime.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: eventDatasetHeaders, Rows: rows}
}
