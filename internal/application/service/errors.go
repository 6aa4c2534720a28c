package service

import (
	"errors"
	"fmt"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	"github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

var (
	// ErrRequestNotFound is returned when no request exists for the id
	ErrRequestNotFound = errors.New("request not found")

	// ErrWorkflowNotFound is returned when a request has no workflow record
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowExists is returned when initialization is attempted for a
	// request that already has a workflow
	ErrWorkflowExists = errors.New("workflow already exists for request")

	// ErrPersistenceConflict is returned when a concurrent transition won
	// the race; callers should reload state before retrying
	ErrPersistenceConflict = errors.New("workflow modified concurrently")
)

// InvalidStageError reports an operation attempted outside its required
// stage. Non-retryable; the caller must refresh state.
type InvalidStageError struct {
	Operation string
	Stage     workflow.Stage
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("operation %s not permitted in stage %s", e.Operation, e.Stage)
}

// UnauthorizedActorError reports an actor that does not match the stage's
// recorded assignee or lacks the required role. Non-retryable.
type UnauthorizedActorError struct {
	Operation string
	ActorID   string
	Reason    string
}

func (e *UnauthorizedActorError) Error() string {
	return fmt.Sprintf("actor %s not authorized for %s: %s", e.ActorID, e.Operation, e.Reason)
}

// InvalidAssignmentError reports an assignment target whose resolved role
// does not match the expected type. The caller must pick a valid target.
type InvalidAssignmentError struct {
	UserID   string
	Expected entity.Role
	Actual   entity.Role
}

func (e *InvalidAssignmentError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("user %s cannot be assigned: expected role %s, user not found", e.UserID, e.Expected)
	}
	return fmt.Sprintf("user %s cannot be assigned: expected role %s, has role %s", e.UserID, e.Expected, e.Actual)
}
