package workflow

// Stage represents a position in the request approval lifecycle
type Stage string

const (
	StageSubmission        Stage = "SUBMISSION"
	StageHopReview         Stage = "HOP_REVIEW"
	StageOfficerAssignment Stage = "OFFICER_ASSIGNMENT"
	StageOfficerReview     Stage = "OFFICER_REVIEW"
	StageHopFinalReview    Stage = "HOP_FINAL_REVIEW"
	StageDirectorReview    Stage = "DIRECTOR_REVIEW"
	StageExecutiveApproval Stage = "EXECUTIVE_APPROVAL"
	StageCompleted         Stage = "COMPLETED"
)

// stageOrder is the fixed forward sequence of the approval chain.
// A workflow's stage index never decreases.
var stageOrder = []Stage{
	StageSubmission,
	StageHopReview,
	StageOfficerAssignment,
	StageOfficerReview,
	StageHopFinalReview,
	StageDirectorReview,
	StageExecutiveApproval,
	StageCompleted,
}

var stageIndex = func() map[Stage]int {
	idx := make(map[Stage]int, len(stageOrder))
	for i, s := range stageOrder {
		idx[s] = i
	}
	return idx
}()

// Stages returns the full stage sequence in forward order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Index returns the position of the stage in the fixed ordering, or -1
// for an unknown stage.
func (s Stage) Index() int {
	if i, ok := stageIndex[s]; ok {
		return i
	}
	return -1
}

// IsValid returns true if the stage is part of the approval chain
func (s Stage) IsValid() bool {
	_, ok := stageIndex[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed from the stage
func (s Stage) IsTerminal() bool {
	return s == StageCompleted
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}
