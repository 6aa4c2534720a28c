package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not permitted in the current stage
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrInvalidStage is returned when a stage is not part of the approval chain
	ErrInvalidStage = errors.New("invalid stage")

	// ErrGuardFailed is returned when a guard condition rejects a permitted action
	ErrGuardFailed = errors.New("guard condition failed")
)
