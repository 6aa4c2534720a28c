package entity

import "time"

// Comment is one entry in a workflow's append-only discussion thread.
// Comments carry no stage restriction and are never edited or deleted.
type Comment struct {
	ID         int64     `json:"id"`
	WorkflowID int64     `json:"workflow_id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
