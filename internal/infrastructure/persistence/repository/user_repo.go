package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// UserRepository implements port.UserRepository and doubles as the engine's
// identity lookup.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, full_name, email, role) VALUES (?, ?, ?, ?)`

	_, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		string(user.Role),
	)
	if err != nil {
		r.logger.Error("Failed to create user",
			zap.String("id", user.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id; returns nil when not found
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, full_name, email, role, created_at FROM users WHERE id = ?`

	user, err := r.scanOne(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindFirstByRole returns the earliest-created holder of a role, or nil
// when the role is vacant. Single-holder roles are assumed, not enforced.
func (r *UserRepository) FindFirstByRole(ctx context.Context, role entity.Role) (*entity.User, error) {
	query := `SELECT id, full_name, email, role, created_at FROM users WHERE role = ? ORDER BY created_at ASC LIMIT 1`

	user, err := r.scanOne(ctx, query, string(role))
	if err != nil {
		r.logger.Error("Failed to find user by role", zap.String("role", role.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to find user by role: %w", err)
	}
	return user, nil
}

// ResolveUser implements port.IdentityLookup
func (r *UserRepository) ResolveUser(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

// FindOneByRole implements port.IdentityLookup
func (r *UserRepository) FindOneByRole(ctx context.Context, role entity.Role) (*entity.User, error) {
	return r.FindFirstByRole(ctx, role)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	var role string

	err := chooseExecutor(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&role,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Role = entity.Role(role)
	return &user, nil
}

// Verify interface compliance
var (
	_ port.UserRepository = (*UserRepository)(nil)
	_ port.IdentityLookup = (*UserRepository)(nil)
)
