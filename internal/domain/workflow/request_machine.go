package workflow

// BuildRequestStateMachine returns a machine for the fixed approval chain,
// positioned at the given stage.
//
// The chain moves strictly forward:
//
//	SUBMISSION -> HOP_REVIEW -> OFFICER_ASSIGNMENT -> OFFICER_REVIEW ->
//	HOP_FINAL_REVIEW -> DIRECTOR_REVIEW -> EXECUTIVE_APPROVAL -> COMPLETED
//
// EXECUTIVE_APPROVAL permits two actions: RECORD_EXECUTIVE_VOTE keeps the
// workflow in place while one executive's decision is recorded, and
// FINALIZE_REQUEST commits the terminal transition (both executives approved,
// or either vetoed).
func BuildRequestStateMachine(initial Stage) StateMachine {
	b := NewBuilder()

	b.Configure(StageSubmission).
		Permit(ActionSubmitHopReview, StageHopReview)

	b.Configure(StageHopReview).
		Permit(ActionAssignOfficer, StageOfficerAssignment)

	b.Configure(StageOfficerAssignment).
		Permit(ActionSubmitOfficerReview, StageOfficerReview)

	b.Configure(StageOfficerReview).
		Permit(ActionSubmitHopFinalReview, StageHopFinalReview)

	b.Configure(StageHopFinalReview).
		Permit(ActionAssignDirector, StageDirectorReview)

	b.Configure(StageDirectorReview).
		Permit(ActionSubmitDirectorReview, StageExecutiveApproval)

	b.Configure(StageExecutiveApproval).
		Permit(ActionRecordExecutiveVote, StageExecutiveApproval).
		Permit(ActionFinalizeRequest, StageCompleted)

	return b.Build(initial)
}
