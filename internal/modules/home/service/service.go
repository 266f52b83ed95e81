package home

import (
	"context"

	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	genre "anoa.com/indieplatform/internal/modules/genre/service"
	homeDto "anoa.com/indieplatform/internal/modules/home/dto"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	reviewRepo "anoa.com/indieplatform/internal/modules/review/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
)

const (
	featuredLimit = 6
	newLimit      = 8
	popularLimit  = 8
	genreLimit    = 8
	reviewLimit   = 5
	postLimit     = 4
)

type HomeService interface {
	GetHome(ctx context.Context) (*homeDto.HomeResponse, error)
	GetStats(ctx context.Context) (*homeDto.PlatformStats, error)
}

type homeService struct {
	games   gameRepo.GameRepository
	genres  genre.GenreService
	reviews reviewRepo.ReviewRepository
	posts   postRepo.PostRepository
	users   userRepo.UserRepository
}

func NewHomeService(games gameRepo.GameRepository, genres genre.GenreService, reviews reviewRepo.ReviewRepository, posts postRepo.PostRepository, users userRepo.UserRepository) HomeService {
	return &homeService{
		games:   games,
		genres:  genres,
		reviews: reviews,
		posts:   posts,
		users:   users,
	}
}

func (s *homeService) GetHome(ctx context.Context) (*homeDto.HomeResponse, error) {
	var (
		res homeDto.HomeResponse
		err error
	)

	if res.Featured, err = s.games.Featured(ctx, featuredLimit); err != nil {
		return nil, err
	}
	if res.NewGames, err = s.games.Newest(ctx, newLimit); err != nil {
		return nil, err
	}
	if res.PopularGames, err = s.games.MostDownloaded(ctx, popularLimit); err != nil {
		return nil, err
	}

	genres, err := s.genres.TopGenres(ctx, genreLimit)
	if err != nil {
		return nil, err
	}
	res.Genres = genres[:0]
	for _, g := range genres {
		if g.GameCount > 0 {
			res.Genres = append(res.Genres, g)
		}
	}

	if res.RecentReviews, err = s.reviews.RecentPublic(ctx, reviewLimit); err != nil {
		return nil, err
	}
	if res.RecentPosts, err = s.posts.Recent(ctx, postLimit); err != nil {
		return nil, err
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	res.Stats = *stats
	return &res, nil
}

func (s *homeService) GetStats(ctx context.Context) (*homeDto.PlatformStats, error) {
	var (
		stats homeDto.PlatformStats
		err   error
	)
	if stats.PublishedGames, err = s.games.CountPublished(ctx); err != nil {
		return nil, err
	}
	if stats.Developers, err = s.users.CountDevelopers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalDownloads, err = s.games.SumDownloads(ctx); err != nil {
		return nil, err
	}
	if stats.PublicReviews, err = s.reviews.CountPublic(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
