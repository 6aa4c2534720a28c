package port

import (
	"context"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// IdentityLookup resolves user ids and role holders for the stage
// transition engine. Backed by the user repository in this deployment; the
// engine only depends on this narrow surface.
type IdentityLookup interface {
	// ResolveUser returns the user for the id, or nil when unknown.
	ResolveUser(ctx context.Context, id string) (*entity.User, error)

	// FindOneByRole returns the first holder of the role, or nil when the
	// role is vacant.
	FindOneByRole(ctx context.Context, role entity.Role) (*entity.User, error)
}

// Notifier delivers a notification to one user. Fire-and-forget from the
// engine's point of view: a dispatch failure must never fail the stage
// transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, requestID int64) error
}
