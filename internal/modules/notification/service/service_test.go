package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyStoresAndPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)
	ctx := context.Background()

	recipient := testutil.CreateUser(t, db)
	sender := testutil.CreateUser(t, db)

	sub := rdb.Subscribe(ctx, Channel(recipient.ID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := &entity.Notification{RecipientID: recipient.ID, SenderID: &sender.ID, Type: entity.NotificationFollow, Title: "New follower"}
	svc.Notify(ctx, n)

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, n.ID.String())
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}

	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	list, err := svc.GetNotifications(ctx, recipient.ID, commonDto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	require.NotNil(t, list.Data[0].Sender)
	assert.Equal(t, sender.Username, list.Data[0].Sender.Username)
	assert.Equal(t, int64(1), list.Meta.TotalItems)
}

func TestNotifySkipsSelfActions(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)

	svc.Notify(ctx, &entity.Notification{RecipientID: user.ID, SenderID: &user.ID, Type: entity.NotificationLike, Title: "x"})

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingRepo struct {
	notifRepo.NotificationRepository
}

func (failingRepo) Create(context.Context, *entity.Notification) error {
	return errors.New("db down")
}

func TestNotifySwallowsStorageFailure(t *testing.T) {
	svc := NewNotificationService(failingRepo{}, nil)
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), &entity.Notification{RecipientID: uuid.New(), Type: entity.NotificationSystem, Title: "x"})
	})
}

func TestMarkAsReadOnlyForRecipient(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	ctx := context.Background()

	recipient := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)

	first := &entity.Notification{RecipientID: recipient.ID, Type: entity.NotificationSystem, Title: "one"}
	second := &entity.Notification{RecipientID: recipient.ID, Type: entity.NotificationSystem, Title: "two"}
	svc.Notify(ctx, first)
	svc.Notify(ctx, second)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, other.ID, first.ID), apperror.ErrNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, recipient.ID, uuid.New()), apperror.ErrNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, recipient.ID, first.ID))
	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	updated, err := svc.MarkAllAsRead(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	count, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
