package entity

import "time"

// Role is the fixed set of actor roles recognised by the approval chain
type Role string

const (
	RoleAdmin                   Role = "admin"
	RoleAssistantProjectOfficer Role = "assistant_project_officer"
	RoleProjectManager          Role = "project_manager"
	RoleHeadOfPrograms          Role = "head_of_programs"
	RoleDirector                Role = "director"
	RoleCEO                     Role = "ceo"
	RolePatron                  Role = "patron"
	RoleUser                    Role = "user"
)

var validRoles = map[Role]bool{
	RoleAdmin:                   true,
	RoleAssistantProjectOfficer: true,
	RoleProjectManager:          true,
	RoleHeadOfPrograms:          true,
	RoleDirector:                true,
	RoleCEO:                     true,
	RolePatron:                  true,
	RoleUser:                    true,
}

// IsValid returns true if the role is a recognised role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsOfficer returns true for the two officer roles a head of programs
// may assign a request to.
func (r Role) IsOfficer() bool {
	return r == RoleAssistantProjectOfficer || r == RoleProjectManager
}

// IsExecutive returns true for the two roles participating in the final
// dual sign-off.
func (r Role) IsExecutive() bool {
	return r == RoleCEO || r == RolePatron
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User is an account known to the identity directory
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor is the authenticated identity invoking an engine operation.
// Identity and role are established by the upstream auth layer; the
// engine never re-derives them.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
