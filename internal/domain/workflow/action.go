package workflow

// Action represents an engine operation that can advance a workflow
type Action string

const (
	ActionSubmitHopReview      Action = "SUBMIT_HOP_REVIEW"
	ActionAssignOfficer        Action = "ASSIGN_OFFICER"
	ActionSubmitOfficerReview  Action = "SUBMIT_OFFICER_REVIEW"
	ActionSubmitHopFinalReview Action = "SUBMIT_HOP_FINAL_REVIEW"
	ActionAssignDirector       Action = "ASSIGN_DIRECTOR"
	ActionSubmitDirectorReview Action = "SUBMIT_DIRECTOR_REVIEW"
	ActionRecordExecutiveVote  Action = "RECORD_EXECUTIVE_VOTE"
	ActionFinalizeRequest      Action = "FINALIZE_REQUEST"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
