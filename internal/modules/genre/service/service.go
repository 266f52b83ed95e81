package genre

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/genre/dto"
	"anoa.com/indieplatform/internal/modules/genre/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/slug"
)

type GenreService interface {
	CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*entity.Genre, error)
	GetAllGenres(ctx context.Context) ([]dto.GenreResponse, error)
	TopGenres(ctx context.Context, limit int) ([]dto.GenreResponse, error)
	GetGenre(ctx context.Context, slug string, query commonDto.PageQuery) (*dto.GenreDetail, error)
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*entity.Genre, error) {
	name := strings.TrimSpace(req.Name)
	genre := &entity.Genre{
		Name:        name,
		Slug:        slug.Make(name),
		Description: req.Description,
		Color:       req.Color,
	}
	if genre.Color == "" {
		genre.Color = "#007bff"
	}

	if existing, _ := s.repo.FindBySlug(ctx, genre.Slug); existing != nil {
		return nil, fmt.Errorf("%w: genre %s already exists", apperror.ErrConflict, name)
	}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *genreService) GetAllGenres(ctx context.Context) ([]dto.GenreResponse, error) {
	return s.TopGenres(ctx, 0)
}

func (s *genreService) TopGenres(ctx context.Context, limit int) ([]dto.GenreResponse, error) {
	rows, err := s.repo.FindAllWithCounts(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.GenreResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, dto.GenreResponse{Genre: row.Genre, GameCount: row.GameCount})
	}
	return res, nil
}

func (s *genreService) GetGenre(ctx context.Context, genreSlug string, query commonDto.PageQuery) (*dto.GenreDetail, error) {
	genre, err := s.repo.FindBySlug(ctx, genreSlug)
	if err != nil {
		return nil, err
	}

	page, limit, offset := query.Normalize(12, 48)
	games, total, err := s.repo.PublishedGames(ctx, genre.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []entity.Game{}
	}

	return &dto.GenreDetail{
		Genre: *genre,
		Games: commonDto.Paginated[entity.Game]{Data: games, Meta: commonDto.NewMeta(page, limit, total)},
	}, nil
}
