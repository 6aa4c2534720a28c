package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	domainwf "github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a transition record
func (r *HistoryRepository) Create(ctx context.Context, history *entity.WorkflowHistory) error {
	query := `
		INSERT INTO workflow_history (workflow_id, actor_id, previous_stage, new_stage, notes)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		history.WorkflowID,
		history.ActorID,
		string(history.PreviousStage),
		string(history.NewStage),
		history.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.Int64("workflow_id", history.WorkflowID),
			zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// ListByWorkflowID returns a workflow's transition trail, oldest first
func (r *HistoryRepository) ListByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.WorkflowHistory, error) {
	query := `
		SELECT id, workflow_id, actor_id, previous_stage, new_stage, notes, created_at
		FROM workflow_history
		WHERE workflow_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := chooseExecutor(ctx, r.db).QueryContext(ctx, query, workflowID)
	if err != nil {
		r.logger.Error("Failed to list history",
			zap.Int64("workflow_id", workflowID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.WorkflowHistory
	for rows.Next() {
		var entry entity.WorkflowHistory
		var previousStage, newStage string
		var notes sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.WorkflowID,
			&entry.ActorID,
			&previousStage,
			&newStage,
			&notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.PreviousStage = domainwf.Stage(previousStage)
		entry.NewStage = domainwf.Stage(newStage)
		entry.Notes = nullString(notes)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
