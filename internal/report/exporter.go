// Package report renders register exports of funding requests.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

const sheetName = "Requests"

var headers = []string{
	"Ticket", "Title", "Type", "Amount", "Requester", "Status", "Created", "Updated",
}

// Exporter writes the requests register as an .xlsx workbook
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export renders the given requests into a workbook and returns the raw
// .xlsx bytes.
func (e *Exporter) Export(requests []*entity.Request) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}

	for row, request := range requests {
		values := []interface{}{
			request.TicketNumber,
			request.Title,
			string(request.RequestType),
			amountValue(request.Amount),
			request.RequesterID,
			request.Status,
			request.CreatedAt.Format(time.RFC3339),
			request.UpdatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("Requests register exported", zap.Int("rows", len(requests)))
	return buf.Bytes(), nil
}

func amountValue(amount *float64) interface{} {
	if amount == nil {
		return ""
	}
	return *amount
}
