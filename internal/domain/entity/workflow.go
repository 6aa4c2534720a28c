package entity

import (
	"time"

	"github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

// Workflow is the approval state of one request. One row per request,
// created together with the request and mutated exclusively by the stage
// transition engine. Assignee fields are populated once their stage is
// reached and are never silently overwritten.
type Workflow struct {
	ID           int64          `json:"id"`
	RequestID    int64          `json:"request_id"`
	CurrentStage workflow.Stage `json:"current_stage"`

	HeadOfProgramsID          *string `json:"head_of_programs_id,omitempty"`
	AssistantProjectOfficerID *string `json:"assistant_project_officer_id,omitempty"`
	ProjectManagerID          *string `json:"project_manager_id,omitempty"`
	DirectorID                *string `json:"director_id,omitempty"`
	CEOID                     *string `json:"ceo_id,omitempty"`
	PatronID                  *string `json:"patron_id,omitempty"`

	SubmissionDate         time.Time  `json:"submission_date"`
	HopReviewDate          *time.Time `json:"hop_review_date,omitempty"`
	HopReviewNotes         *string    `json:"hop_review_notes,omitempty"`
	OfficerAssignmentDate  *time.Time `json:"officer_assignment_date,omitempty"`
	OfficerReviewDate      *time.Time `json:"officer_review_date,omitempty"`
	OfficerReviewNotes     *string    `json:"officer_review_notes,omitempty"`
	HopFinalReviewDate     *time.Time `json:"hop_final_review_date,omitempty"`
	HopFinalReviewNotes    *string    `json:"hop_final_review_notes,omitempty"`
	DirectorReviewDate     *time.Time `json:"director_review_date,omitempty"`
	DirectorReviewNotes    *string    `json:"director_review_notes,omitempty"`
	ExecutiveApprovalDate  *time.Time `json:"executive_approval_date,omitempty"`
	ExecutiveApprovalNotes *string    `json:"executive_approval_notes,omitempty"`

	CEOApproved    *bool `json:"ceo_approved,omitempty"`
	PatronApproved *bool `json:"patron_approved,omitempty"`
	Completed      bool  `json:"completed"`

	// Version is the optimistic concurrency token. Every engine write
	// increments it; a stale update is rejected by the workflow store.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignedOfficer returns the id and role of whichever officer field is
// populated. Exactly one of the two is set after officer assignment.
func (w *Workflow) AssignedOfficer() (string, Role, bool) {
	if w.AssistantProjectOfficerID != nil {
		return *w.AssistantProjectOfficerID, RoleAssistantProjectOfficer, true
	}
	if w.ProjectManagerID != nil {
		return *w.ProjectManagerID, RoleProjectManager, true
	}
	return "", "", false
}

// BothExecutivesApproved reports whether CEO and Patron have both recorded
// an approval.
func (w *Workflow) BothExecutivesApproved() bool {
	return w.CEOApproved != nil && *w.CEOApproved &&
		w.PatronApproved != nil && *w.PatronApproved
}

// OtherExecutive returns the counterpart executive's id for the given role:
// the patron for the ceo and vice versa. Nil when unset or not an executive.
func (w *Workflow) OtherExecutive(role Role) *string {
	switch role {
	case RoleCEO:
		return w.PatronID
	case RolePatron:
		return w.CEOID
	}
	return nil
}

// WorkflowHistory is one immutable entry in a workflow's transition trail
type WorkflowHistory struct {
	ID            int64          `json:"id"`
	WorkflowID    int64          `json:"workflow_id"`
	ActorID       string         `json:"actor_id"`
	PreviousStage workflow.Stage `json:"previous_stage"`
	NewStage      workflow.Stage `json:"new_stage"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
