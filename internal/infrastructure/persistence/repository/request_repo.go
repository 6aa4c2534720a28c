package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// RequestRepository implements port.RequestRepository
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new request
func (r *RequestRepository) Create(ctx context.Context, request *entity.Request) error {
	query := `
		INSERT INTO requests (
			ticket_number, title, description, request_type, amount,
			requester_id, status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		request.TicketNumber,
		request.Title,
		request.Description,
		string(request.RequestType),
		request.Amount,
		request.RequesterID,
		request.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create request",
			zap.String("ticket_number", request.TicketNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	request.ID = id
	return nil
}

// GetByID retrieves a request by ID; returns nil when not found
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.Request, error) {
	query := selectRequest + ` WHERE id = ?`
	return r.scanOne(ctx, query, id)
}

// GetByTicketNumber retrieves a request by ticket number; returns nil when not found
func (r *RequestRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*entity.Request, error) {
	query := selectRequest + ` WHERE ticket_number = ?`
	return r.scanOne(ctx, query, ticketNumber)
}

// UpdateStatus updates the status mirror of a request
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update request status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update request status: %w", err)
	}

	return nil
}

// List retrieves requests with pagination, optionally filtered by status
func (r *RequestRepository) List(ctx context.Context, limit, offset int, status string) ([]*entity.Request, error) {
	query := selectRequest
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := chooseExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

const selectRequest = `
	SELECT id, ticket_number, title, description, request_type, amount,
		requester_id, status, created_at, updated_at
	FROM requests`

func (r *RequestRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*entity.Request, error) {
	row := chooseExecutor(ctx, r.db).QueryRowContext(ctx, query, args...)
	request, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.Request, error) {
	var request entity.Request
	var requestType string
	var amount sql.NullFloat64

	err := row.Scan(
		&request.ID,
		&request.TicketNumber,
		&request.Title,
		&request.Description,
		&requestType,
		&amount,
		&request.RequesterID,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	request.RequestType = entity.RequestType(requestType)
	if amount.Valid {
		request.Amount = &amount.Float64
	}
	return &request, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
