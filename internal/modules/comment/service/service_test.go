package comment

import (
	"context"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	commentRepo "anoa.com/indieplatform/internal/modules/comment/repository"
	likeRepo "anoa.com/indieplatform/internal/modules/like/repository"
	like "anoa.com/indieplatform/internal/modules/like/service"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/modules/reference"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	likes like.LikeService
	svc   CommentService
}

func setup(t *testing.T, commentLimit time.Duration) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	resolver := reference.NewResolver(db, reference.NewRegistry())
	likes := like.NewLikeService(likeRepo.NewLikeRepository(db), resolver, notifications)
	svc := NewCommentService(commentRepo.NewCommentRepository(db), resolver, likes, userRepo.NewUserRepository(db), notifications, rdb, 0, commentLimit)
	return fixture{db: db, mr: mr, likes: likes, svc: svc}
}

func notificationsFor(t *testing.T, db *gorm.DB, recipient *entity.User) []entity.Notification {
	t.Helper()
	var ns []entity.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipient.ID).Order("created_at ASC").Find(&ns).Error)
	return ns
}

func TestReplyToReplyAttachesToRoot(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	dev := testutil.CreateUser(t, f.db, testutil.Developer())
	alice := testutil.CreateUser(t, f.db)
	bob := testutil.CreateUser(t, f.db)
	game := testutil.CreateGame(t, f.db, dev, testutil.Published())

	root, err := f.svc.CreateComment(ctx, alice.ID, CommentInput{Target: game.Reference(), Content: "  love the art  "})
	require.NoError(t, err)
	assert.Equal(t, "love the art", root.Content)
	assert.Nil(t, root.ParentID)

	reply, err := f.svc.CreateComment(ctx, bob.ID, CommentInput{Target: game.Reference(), ParentID: &root.ID, Content: "same"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	nested, err := f.svc.CreateComment(ctx, alice.ID, CommentInput{Target: game.Reference(), ParentID: &reply.ID, Content: "agreed"})
	require.NoError(t, err)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, root.ID, *nested.ParentID)

	// the developer hears about the root comment, alice about bob's reply, bob about alice's
	devNotes := notificationsFor(t, f.db, dev)
	require.Len(t, devNotes, 1)
	assert.Equal(t, entity.NotificationComment, devNotes[0].Type)
	assert.Equal(t, "/games/"+game.Slug, devNotes[0].ActionURL)
	assert.Len(t, notificationsFor(t, f.db, alice), 1)
	assert.Len(t, notificationsFor(t, f.db, bob), 1)

	_, err = f.likes.Toggle(ctx, dev.ID, entity.Ref{Kind: entity.KindComment, ID: reply.ID})
	require.NoError(t, err)

	list, err := f.svc.ListComments(ctx, &dev.ID, game.Reference(), commonDto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, int64(1), list.Meta.TotalItems)
	require.Len(t, list.Data[0].Replies, 2)
	assert.Equal(t, reply.ID, list.Data[0].Replies[0].ID)
	assert.Equal(t, int64(1), list.Data[0].Replies[0].LikeCount)
	assert.True(t, list.Data[0].Replies[0].Liked)
	assert.False(t, list.Data[0].Liked)
}

func TestCommentValidation(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	dev := testutil.CreateUser(t, f.db, testutil.Developer())
	player := testutil.CreateUser(t, f.db)
	game := testutil.CreateGame(t, f.db, dev, testutil.Published())
	other := testutil.CreateGame(t, f.db, dev, testutil.Published())
	draft := testutil.CreateGame(t, f.db, dev)

	t.Run("draft target is hidden", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, player.ID, CommentInput{Target: draft.Reference(), Content: "hi"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, player.ID, CommentInput{Target: game.Reference(), Content: "   "})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("parent on another target", func(t *testing.T) {
		root, err := f.svc.CreateComment(ctx, player.ID, CommentInput{Target: other.Reference(), Content: "first"})
		require.NoError(t, err)
		_, err = f.svc.CreateComment(ctx, player.ID, CommentInput{Target: game.Reference(), ParentID: &root.ID, Content: "x"})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("own game comment does not notify", func(t *testing.T) {
		before := len(notificationsFor(t, f.db, dev))
		_, err := f.svc.CreateComment(ctx, dev.ID, CommentInput{Target: game.Reference(), Content: "patch soon"})
		require.NoError(t, err)
		assert.Len(t, notificationsFor(t, f.db, dev), before)
	})
}

func TestCommentCooldown(t *testing.T) {
	f := setup(t, time.Minute)
	ctx := context.Background()

	dev := testutil.CreateUser(t, f.db, testutil.Developer())
	player := testutil.CreateUser(t, f.db)
	game := testutil.CreateGame(t, f.db, dev, testutil.Published())

	_, err := f.svc.CreateComment(ctx, player.ID, CommentInput{Target: game.Reference(), Content: "one"})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(ctx, player.ID, CommentInput{Target: game.Reference(), Content: "two"})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	f.mr.FastForward(2 * time.Minute)
	_, err = f.svc.CreateComment(ctx, player.ID, CommentInput{Target: game.Reference(), Content: "three"})
	assert.NoError(t, err)
}

func TestDeleteComment(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	dev := testutil.CreateUser(t, f.db, testutil.Developer())
	author := testutil.CreateUser(t, f.db)
	stranger := testutil.CreateUser(t, f.db)
	mod := testutil.CreateUser(t, f.db, testutil.WithRole(f.db, entity.RoleModerator))
	game := testutil.CreateGame(t, f.db, dev, testutil.Published())

	root, err := f.svc.CreateComment(ctx, author.ID, CommentInput{Target: game.Reference(), Content: "root"})
	require.NoError(t, err)
	reply, err := f.svc.CreateComment(ctx, stranger.ID, CommentInput{Target: game.Reference(), ParentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	_, err = f.likes.Toggle(ctx, stranger.ID, entity.Ref{Kind: entity.KindComment, ID: root.ID})
	require.NoError(t, err)

	err = f.svc.DeleteComment(ctx, stranger.ID, root.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.svc.DeleteComment(ctx, mod.ID, root.ID))

	var n int64
	require.NoError(t, f.db.Model(&entity.Comment{}).Where("id IN ?", []any{root.ID, reply.ID}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&entity.Like{}).Where("target_id = ?", root.ID).Count(&n).Error)
	assert.Zero(t, n)

	err = f.svc.DeleteComment(ctx, author.ID, root.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
