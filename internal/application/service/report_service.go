package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	"github.com/bgftrust/bgf-dashboard/internal/report"
)

// reportPageSize bounds each page fetched while building the register
const reportPageSize = 500

// ReportService produces the requests register export
type ReportService interface {
	RequestsRegister(ctx context.Context, status string) ([]byte, error)
}

type reportServiceImpl struct {
	requestRepo port.RequestRepository
	exporter    *report.Exporter
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(requestRepo port.RequestRepository, exporter *report.Exporter, logger *zap.Logger) ReportService {
	return &reportServiceImpl{
		requestRepo: requestRepo,
		exporter:    exporter,
		logger:      logger,
	}
}

func (s *reportServiceImpl) RequestsRegister(ctx context.Context, status string) ([]byte, error) {
	var all []*entity.Request
	offset := 0
	for {
		page, err := s.requestRepo.List(ctx, reportPageSize, offset, status)
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
		all = append(all, page...)
		if len(page) < reportPageSize {
			break
		}
		offset += reportPageSize
	}

	data, err := s.exporter.Export(all)
	if err != nil {
		s.logger.Error("Failed to export requests register", zap.Error(err))
		return nil, fmt.Errorf("export register: %w", err)
	}
	return data, nil
}
