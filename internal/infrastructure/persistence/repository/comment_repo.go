package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// CommentRepository implements port.CommentRepository
type CommentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB, logger *zap.Logger) port.CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a comment to a workflow's thread
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	query := `INSERT INTO workflow_comments (workflow_id, user_id, text) VALUES (?, ?, ?)`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		comment.WorkflowID,
		comment.UserID,
		comment.Text,
	)
	if err != nil {
		r.logger.Error("Failed to create comment",
			zap.Int64("workflow_id", comment.WorkflowID),
			zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	comment.ID = id
	return nil
}

// ListByWorkflowID returns a workflow's comments ordered oldest first
func (r *CommentRepository) ListByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Comment, error) {
	query := `
		SELECT id, workflow_id, user_id, text, created_at
		FROM workflow_comments
		WHERE workflow_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := chooseExecutor(ctx, r.db).QueryContext(ctx, query, workflowID)
	if err != nil {
		r.logger.Error("Failed to list comments",
			zap.Int64("workflow_id", workflowID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*entity.Comment
	for rows.Next() {
		var comment entity.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.WorkflowID,
			&comment.UserID,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}

// Verify interface compliance
var _ port.CommentRepository = (*CommentRepository)(nil)
