package home

import (
	"context"
	"testing"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	genreRepo "anoa.com/indieplatform/internal/modules/genre/repository"
	genre "anoa.com/indieplatform/internal/modules/genre/service"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	reviewRepo "anoa.com/indieplatform/internal/modules/review/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHome(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewHomeService(
		gameRepo.NewGameRepository(db),
		genre.NewGenreService(genreRepo.NewGenreRepository(db)),
		reviewRepo.NewReviewRepository(db),
		postRepo.NewPostRepository(db),
		userRepo.NewUserRepository(db),
	)

	dev := testutil.CreateUser(t, db, testutil.Developer())
	player := testutil.CreateUser(t, db)

	puzzle := &entity.Genre{Name: "Puzzle", Slug: "puzzle"}
	empty := &entity.Genre{Name: "Racing", Slug: "racing"}
	require.NoError(t, db.Create(puzzle).Error)
	require.NoError(t, db.Create(empty).Error)

	var published []*entity.Game
	for i := 0; i < 10; i++ {
		g := testutil.CreateGame(t, db, dev, testutil.Published())
		require.NoError(t, db.Model(g).UpdateColumn("download_count", i).Error)
		published = append(published, g)
	}
	require.NoError(t, db.Model(published[0]).UpdateColumn("featured", true).Error)
	require.NoError(t, db.Model(published[0]).Association("Genres").Append(puzzle))
	draft := testutil.CreateGame(t, db, dev)
	require.NoError(t, db.Model(draft).UpdateColumn("download_count", 100).Error)

	require.NoError(t, db.Omit("User", "Game").Create(&entity.Review{UserID: player.ID, GameID: published[1].ID, Title: "fun", Content: "yes", Rating: 5, IsPublic: true}).Error)
	require.NoError(t, db.Omit("User", "Game").Create(&entity.Review{UserID: player.ID, GameID: published[2].ID, Title: "meh", Content: "hidden", Rating: 2, IsPublic: false}).Error)

	res, err := svc.GetHome(ctx)
	require.NoError(t, err)

	require.Len(t, res.Featured, 1)
	assert.Equal(t, published[0].ID, res.Featured[0].ID)
	assert.Len(t, res.NewGames, 8)
	require.Len(t, res.PopularGames, 8)
	assert.Equal(t, published[9].ID, res.PopularGames[0].ID)
	require.Len(t, res.Genres, 1)
	assert.Equal(t, "Puzzle", res.Genres[0].Name)
	assert.Len(t, res.RecentReviews, 1)
	assert.Empty(t, res.RecentPosts)

	assert.Equal(t, int64(10), res.Stats.PublishedGames)
	assert.Equal(t, int64(1), res.Stats.Developers)
	assert.Equal(t, int64(45), res.Stats.TotalDownloads)
	assert.Equal(t, int64(1), res.Stats.PublicReviews)
}
