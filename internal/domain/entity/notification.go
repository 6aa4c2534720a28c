package entity

import "time"

// Notification is an in-app notification produced by the stage transition
// engine. Dispatch is best-effort: a failed write is logged and never rolls
// back the transition that produced it.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	RequestID *int64     `json:"request_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
