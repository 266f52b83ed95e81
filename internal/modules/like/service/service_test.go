package service

import (
	"context"
	"testing"

	"anoa.com/indieplatform/internal/entity"
	likeRepo "anoa.com/indieplatform/internal/modules/like/repository"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, LikeService) {
	t.Helper()
	db := testutil.NewDB(t)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	resolver := reference.NewResolver(db, reference.NewRegistry())
	return db, NewLikeService(likeRepo.NewLikeRepository(db), resolver, notifications)
}

func unread(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entity.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&n).Error)
	return n
}

func TestToggleLikeAlternates(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	fan := testutil.CreateUser(t, db)
	game := testutil.CreateGame(t, db, dev, testutil.Published())

	for i := 1; i <= 4; i++ {
		res, err := svc.Toggle(ctx, fan.ID, game.Reference())
		require.NoError(t, err)
		if i%2 == 1 {
			assert.Equal(t, "added", res.Action)
			assert.Equal(t, int64(1), res.Count)
		} else {
			assert.Equal(t, "removed", res.Action)
			assert.Zero(t, res.Count)
		}
	}

	var rows int64
	require.NoError(t, db.Model(&entity.Like{}).Where("user_id = ?", fan.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	// one notification per "added"
	assert.Equal(t, int64(2), unread(t, db, dev.ID))
}

func TestToggleLikeOwnContentDoesNotNotify(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	game := testutil.CreateGame(t, db, dev, testutil.Published())

	res, err := svc.Toggle(ctx, dev.ID, game.Reference())
	require.NoError(t, err)
	assert.Equal(t, "added", res.Action)
	assert.Zero(t, unread(t, db, dev.ID))
}

func TestToggleLikeMissingOrHiddenTarget(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	fan := testutil.CreateUser(t, db)
	draft := testutil.CreateGame(t, db, dev)

	_, err := svc.Toggle(ctx, fan.ID, entity.Ref{Kind: entity.KindReview, ID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Toggle(ctx, fan.ID, draft.Reference())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var rows int64
	require.NoError(t, db.Model(&entity.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestStatusAndCounts(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	g1 := testutil.CreateGame(t, db, dev, testutil.Published())
	g2 := testutil.CreateGame(t, db, dev, testutil.Published())

	for _, u := range []*entity.User{a, b} {
		_, err := svc.Toggle(ctx, u.ID, g1.Reference())
		require.NoError(t, err)
	}
	_, err := svc.Toggle(ctx, b.ID, g2.Reference())
	require.NoError(t, err)

	status, err := svc.Status(ctx, &a.ID, g1.Reference())
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Count)
	assert.True(t, status.Liked)

	status, err = svc.Status(ctx, nil, g2.Reference())
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Count)
	assert.False(t, status.Liked)

	counts, liked, err := svc.Counts(ctx, &a.ID, entity.KindGame, []uuid.UUID{g1.ID, g2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[g1.ID])
	assert.Equal(t, int64(1), counts[g2.ID])
	assert.True(t, liked[g1.ID])
	assert.False(t, liked[g2.ID])
}
