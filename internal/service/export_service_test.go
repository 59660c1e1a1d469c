package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
)

func TestExportCSVContainsEvents(t *testing.T) {
	svc := NewExportService(&eventRepoStub{listed: sampleEvents()}, nil, nil, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "u1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Module,Title,Description,Location,Week,Start,End")
	assert.Contains(t, body, "MA32007")
	assert.Contains(t, body, "Numerical Analysis")
}

func TestExportICSContainsUIDs(t *testing.T) {
	svc := NewExportService(&eventRepoStub{listed: sampleEvents()}, nil, nil, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "u1", FormatICS)
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)

	body := string(result.Payload)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "MA32007-12-1-09:00")
	assert.Contains(t, body, "MA32007-13-1-09:00")
}

func TestExportPDFProducesDocument(t *testing.T) {
	svc := NewExportService(&eventRepoStub{listed: sampleEvents()}, nil, nil, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "u1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&eventRepoStub{}, nil, nil, nil, zap.NewNop())

	_, err := svc.Export(context.Background(), "u1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
