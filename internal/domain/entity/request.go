package entity

import "time"

// RequestType classifies what kind of support a funding request asks for
type RequestType string

const (
	RequestTypeEducationalSupport RequestType = "educational_support"
	RequestTypeMedicalAssistance  RequestType = "medical_assistance"
	RequestTypeLivelihoodSupport  RequestType = "livelihood_support"
	RequestTypeCommunityProject   RequestType = "community_project"
	RequestTypeOther              RequestType = "other"
)

var validRequestTypes = map[RequestType]bool{
	RequestTypeEducationalSupport: true,
	RequestTypeMedicalAssistance:  true,
	RequestTypeLivelihoodSupport:  true,
	RequestTypeCommunityProject:   true,
	RequestTypeOther:              true,
}

// IsValid returns true if the request type is recognised
func (t RequestType) IsValid() bool {
	return validRequestTypes[t]
}

// Request status constants. The status column mirrors the workflow-derived
// state and is only ever written by the stage transition engine.
const (
	RequestStatusUnderReview                = "under_review"
	RequestStatusOfficerAssignmentPending   = "officer_assignment_pending"
	RequestStatusUnderOfficerReview         = "under_officer_review"
	RequestStatusHopFinalReviewPending      = "hop_final_review_pending"
	RequestStatusDirectorAssignmentPending  = "director_assignment_pending"
	RequestStatusUnderDirectorReview        = "under_director_review"
	RequestStatusPendingExecutiveApproval   = "pending_executive_approval"
	RequestStatusApproved                   = "approved"
	RequestStatusRejected                   = "rejected"
)

// Request is a funding request owned by the request store. Workflow state
// lives in the one-to-one Workflow record keyed by request id.
type Request struct {
	ID           int64       `json:"id"`
	TicketNumber string      `json:"ticket_number"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	RequestType  RequestType `json:"request_type"`
	Amount       *float64    `json:"amount,omitempty"`
	RequesterID  string      `json:"requester_id"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
