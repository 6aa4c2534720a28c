package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// ErrEmptyComment is returned when a comment has no text
var ErrEmptyComment = errors.New("comment text is required")

// CommentService manages the append-only discussion thread of a workflow.
// Comments carry no stage restriction and remain writable after completion.
type CommentService interface {
	AddComment(ctx context.Context, requestID int64, userID, text string) (*entity.Comment, error)
	ListComments(ctx context.Context, requestID int64) ([]*entity.Comment, error)
}

type commentServiceImpl struct {
	workflowRepo port.WorkflowRepository
	commentRepo  port.CommentRepository
	logger       *zap.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(workflowRepo port.WorkflowRepository, commentRepo port.CommentRepository, logger *zap.Logger) CommentService {
	return &commentServiceImpl{
		workflowRepo: workflowRepo,
		commentRepo:  commentRepo,
		logger:       logger,
	}
}

func (s *commentServiceImpl) AddComment(ctx context.Context, requestID int64, userID, text string) (*entity.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	workflow, err := s.workflowRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	comment := &entity.Comment{
		WorkflowID: workflow.ID,
		UserID:     userID,
		Text:       strings.TrimSpace(text),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to add comment",
			zap.Int64("workflow_id", workflow.ID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return comment, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, requestID int64) ([]*entity.Comment, error) {
	workflow, err := s.workflowRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	comments, err := s.commentRepo.ListByWorkflowID(ctx, workflow.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
