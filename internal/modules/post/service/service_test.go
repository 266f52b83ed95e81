package post

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	postDto "anoa.com/indieplatform/internal/modules/post/dto"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	view "anoa.com/indieplatform/internal/modules/view/service"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryIndexer struct {
	posts map[uuid.UUID]string
}

func (m *memoryIndexer) IndexPost(_ context.Context, p *entity.Post) error {
	m.posts[p.ID] = p.Title
	return nil
}

func (m *memoryIndexer) DeletePost(_ context.Context, id uuid.UUID) error {
	delete(m.posts, id)
	return nil
}

func setup(t *testing.T) (*gorm.DB, *postService, *memoryIndexer) {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	indexer := &memoryIndexer{posts: map[uuid.UUID]string{}}
	svc := NewPostService(postRepo.NewPostRepository(db), gameRepo.NewGameRepository(db), userRepo.NewUserRepository(db), store, view.NewViewService(rdb, time.Hour), indexer)
	return db, svc.(*postService), indexer
}

func TestCreatePost(t *testing.T) {
	db, svc, indexer := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	rival := testutil.CreateUser(t, db, testutil.Developer())
	game := testutil.CreateGame(t, db, dev, testutil.Published())

	p, err := svc.CreatePost(ctx, dev.ID, postDto.CreatePostInput{
		Title:       "Devlog #1: Lighting",
		Content:     strings.Repeat("shadows ", 60),
		PostType:    entity.PostTypeDevLog,
		GameID:      game.ID.String(),
		IsPublished: true,
	}, &commonDto.UploadFile{Reader: strings.NewReader("png"), FileName: "hero.png"})
	require.NoError(t, err)
	assert.Equal(t, "devlog-1-lighting", p.Slug)
	require.NotNil(t, p.GameID)
	assert.Equal(t, game.ID, *p.GameID)
	require.NotNil(t, p.PublishedAt)
	require.NotNil(t, p.FeaturedImage)
	assert.True(t, strings.HasPrefix(*p.FeaturedImage, "/media/posts/"))
	assert.True(t, strings.HasSuffix(p.Excerpt, "..."))
	assert.Equal(t, "Devlog #1: Lighting", indexer.posts[p.ID])

	again, err := svc.CreatePost(ctx, dev.ID, postDto.CreatePostInput{Title: "Devlog #1: Lighting", Content: "again"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, p.Slug, again.Slug)
	assert.Equal(t, entity.PostTypeGeneral, again.PostType)
	assert.Nil(t, again.PublishedAt)
	assert.NotContains(t, indexer.posts, again.ID)

	_, err = svc.CreatePost(ctx, rival.ID, postDto.CreatePostInput{Title: "Not mine", Content: "x", GameID: game.ID.String()}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.CreatePost(ctx, dev.ID, postDto.CreatePostInput{Title: "Ghost", Content: "x", GameID: uuid.NewString()}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPublishStampsOnce(t *testing.T) {
	db, svc, indexer := setup(t)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	author := testutil.CreateUser(t, db)
	p, err := svc.CreatePost(ctx, author.ID, postDto.CreatePostInput{Title: "Patch notes", Content: "fixed"}, nil)
	require.NoError(t, err)

	p, err = svc.SetPublished(ctx, author.ID, p.Slug, true)
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, first.Equal(*p.PublishedAt))
	assert.Contains(t, indexer.posts, p.ID)

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	p, err = svc.SetPublished(ctx, author.ID, p.Slug, false)
	require.NoError(t, err)
	assert.NotContains(t, indexer.posts, p.ID)
	p, err = svc.SetPublished(ctx, author.ID, p.Slug, true)
	require.NoError(t, err)
	assert.True(t, first.Equal(*p.PublishedAt))

	stranger := testutil.CreateUser(t, db)
	_, err = svc.SetPublished(ctx, stranger.ID, p.Slug, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestListPostsPinnedFirst(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	mod := testutil.CreateUser(t, db, testutil.WithRole(db, entity.RoleModerator))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var slugs []string
	for i, by := range []*entity.User{mod, author, author} {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		p, err := svc.CreatePost(ctx, by.ID, postDto.CreatePostInput{Title: "Update " + at.Format("15h"), Content: "body", IsPublished: true}, nil)
		require.NoError(t, err)
		slugs = append(slugs, p.Slug)
	}
	_, err := svc.CreatePost(ctx, author.ID, postDto.CreatePostInput{Title: "Draft", Content: "body"}, nil)
	require.NoError(t, err)

	pin := true
	_, err = svc.UpdatePost(ctx, author.ID, slugs[1], postDto.UpdatePostInput{IsPinned: &pin}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.UpdatePost(ctx, mod.ID, slugs[0], postDto.UpdatePostInput{IsPinned: &pin}, nil)
	require.NoError(t, err)

	list, err := svc.ListPosts(ctx, postDto.PostQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Meta.TotalItems)
	require.Len(t, list.Data, 3)
	assert.Equal(t, []string{slugs[0], slugs[2], slugs[1]}, []string{list.Data[0].Slug, list.Data[1].Slug, list.Data[2].Slug})

	filtered, err := svc.ListPosts(ctx, postDto.PostQuery{Type: entity.PostTypeRelease})
	require.NoError(t, err)
	assert.Empty(t, filtered.Data)
}

func TestGetPostViews(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	reader := testutil.CreateUser(t, db)
	published, err := svc.CreatePost(ctx, author.ID, postDto.CreatePostInput{Title: "Live", Content: "body", IsPublished: true}, nil)
	require.NoError(t, err)
	draft, err := svc.CreatePost(ctx, author.ID, postDto.CreatePostInput{Title: "Hidden", Content: "body"}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.GetPost(ctx, &reader.ID, reader.ID.String(), published.Slug)
		require.NoError(t, err)
	}
	p, err := svc.GetPost(ctx, nil, "ip:10.0.0.1", published.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ViewCount)

	_, err = svc.GetPost(ctx, &reader.ID, reader.ID.String(), draft.Slug)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.GetPost(ctx, &author.ID, author.ID.String(), draft.Slug)
	assert.NoError(t, err)
}

func TestDeletePostCascades(t *testing.T) {
	db, svc, indexer := setup(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	p, err := svc.CreatePost(ctx, author.ID, postDto.CreatePostInput{Title: "Bye", Content: "body", IsPublished: true}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Omit("User").Create(&entity.Comment{UserID: fan.ID, TargetType: entity.KindPost, TargetID: p.ID, Content: "o7", IsPublic: true}).Error)
	require.NoError(t, db.Omit("User").Create(&entity.Like{UserID: fan.ID, TargetType: entity.KindPost, TargetID: p.ID}).Error)

	assert.ErrorIs(t, svc.DeletePost(ctx, fan.ID, p.Slug), apperror.ErrForbidden)
	require.NoError(t, svc.DeletePost(ctx, author.ID, p.Slug))

	var n int64
	require.NoError(t, db.Model(&entity.Comment{}).Where("target_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&entity.Like{}).Where("target_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
	assert.NotContains(t, indexer.posts, p.ID)
}
