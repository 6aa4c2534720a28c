package port

import (
	"context"
	"errors"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// ErrVersionConflict is returned by WorkflowRepository.Update when the row
// was modified since it was read. Callers reload and decide whether the
// operation still applies.
var ErrVersionConflict = errors.New("workflow version conflict")

// RequestRepository defines persistence operations for Request
type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id int64) (*entity.Request, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*entity.Request, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, limit, offset int, status string) ([]*entity.Request, error)
}

// WorkflowRepository defines persistence operations for Workflow
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *entity.Workflow) error
	GetByRequestID(ctx context.Context, requestID int64) (*entity.Workflow, error)
	// Update writes all mutable columns guarded by the version read from
	// the database; returns ErrVersionConflict if the guard fails.
	Update(ctx context.Context, workflow *entity.Workflow) error
	ListAwaitingActor(ctx context.Context, actorID string) ([]*entity.Workflow, error)
}

// CommentRepository defines persistence operations for Comment
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	ListByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Comment, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindFirstByRole returns the earliest-created holder of the role, or
	// nil when none exists. Assuming a single holder per executive role is
	// a documented simplification of the identity directory.
	FindFirstByRole(ctx context.Context, role entity.Role) (*entity.User, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64, userID string) error
}

// HistoryRepository defines persistence operations for WorkflowHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.WorkflowHistory) error
	ListByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.WorkflowHistory, error)
}

// TransactionManager handles database transactions. Nested calls reuse the
// transaction already carried by the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
