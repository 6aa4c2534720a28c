package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

type fakeNotificationRepo struct {
	notifications []*entity.Notification
	nextID        int64
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	f.nextID++
	n.ID = f.nextID
	clone := *n
	f.notifications = append(f.notifications, &clone)
	return nil
}

func (f *fakeNotificationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id int64, userID string) error {
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
		}
	}
	return nil
}

func TestNotifyPersistsNotification(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop())

	err := svc.Notify(context.Background(), "hop-1", "New funding request", "Request BGF-1 awaits review.", 1)
	require.NoError(t, err)

	listed, err := svc.ListForUser(context.Background(), "hop-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "New funding request", listed[0].Title)
	require.NotNil(t, listed[0].RequestID)
	assert.Equal(t, int64(1), *listed[0].RequestID)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop())
	require.NoError(t, svc.Notify(context.Background(), "hop-1", "t", "m", 1))

	// Another user acknowledging is a no-op.
	require.NoError(t, svc.MarkRead(context.Background(), 1, "dir-1"))
	listed, _ := svc.ListForUser(context.Background(), "hop-1", 20, 0)
	assert.Nil(t, listed[0].ReadAt)

	require.NoError(t, svc.MarkRead(context.Background(), 1, "hop-1"))
	listed, _ = svc.ListForUser(context.Background(), "hop-1", 20, 0)
	assert.NotNil(t, listed[0].ReadAt)
}
