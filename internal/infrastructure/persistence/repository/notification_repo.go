package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `INSERT INTO notifications (user_id, title, message, request_id) VALUES (?, ?, ?, ?)`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.RequestID,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	notification.ID = id
	return nil
}

// ListByUserID returns a user's notifications, newest first
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, title, message, request_id, read_at, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := chooseExecutor(ctx, r.db).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var requestID sql.NullInt64
		var readAt sql.NullTime

		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&requestID,
			&readAt,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if requestID.Valid {
			n.RequestID = &requestID.Int64
		}
		n.ReadAt = nullTime(readAt)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead stamps a notification as read. Scoped by user id so one user
// cannot acknowledge another's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID string) error {
	query := `UPDATE notifications SET read_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND read_at IS NULL`

	_, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification read",
			zap.Int64("id", id),
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
