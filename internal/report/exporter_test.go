package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

func TestExportWritesWorkbook(t *testing.T) {
	amount := 1200.50
	requests := []*entity.Request{
		{
			ID:           1,
			TicketNumber: "BGF-20260831-aaaa1111",
			Title:        "School fees",
			RequestType:  entity.RequestTypeEducationalSupport,
			Amount:       &amount,
			RequesterID:  "applicant-1",
			Status:       entity.RequestStatusApproved,
			CreatedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           2,
			TicketNumber: "BGF-20260831-bbbb2222",
			Title:        "Clinic supplies",
			RequestType:  entity.RequestTypeMedicalAssistance,
			RequesterID:  "applicant-2",
			Status:       entity.RequestStatusUnderReview,
			CreatedAt:    time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	data, err := NewExporter(zap.NewNop()).Export(requests)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	ticket, err := f.GetCellValue("Requests", "A2")
	require.NoError(t, err)
	assert.Equal(t, "BGF-20260831-aaaa1111", ticket)

	status, err := f.GetCellValue("Requests", "F3")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusUnderReview, status)

	// Missing amount renders as an empty cell, not a zero.
	missing, err := f.GetCellValue("Requests", "D3")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestExportEmptyRegister(t *testing.T) {
	data, err := NewExporter(zap.NewNop()).Export(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Requests", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ticket", header)
}
