package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// NotificationService implements port.Notifier by persisting in-app
// notification rows. Delivery integration (email, push) is out of scope;
// structured logs make dispatch observable in the meantime.
type NotificationService interface {
	port.Notifier

	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64, userID string) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID, title, message string, requestID int64) error {
	notification := &entity.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		RequestID: &requestID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	s.logger.Info("Notification recorded",
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.Int64("request_id", requestID))
	return nil
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64, userID string) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
