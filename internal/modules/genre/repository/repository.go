package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenreCount struct {
	entity.Genre
	GameCount int64
}

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	FindBySlug(ctx context.Context, slug string) (*entity.Genre, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Genre, error)
	// FindAllWithCounts orders by published-game count, then name. limit <= 0 returns all.
	FindAllWithCounts(ctx context.Context, limit int) ([]GenreCount, error)
	PublishedGames(ctx context.Context, genreID uuid.UUID, limit, offset int) ([]entity.Game, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	return apperror.FromDB(r.db.WithContext(ctx).Create(genre).Error)
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*entity.Genre, error) {
	var genre entity.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &genre, nil
}

func (r *genreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Genre, error) {
	var genres []entity.Genre
	if len(ids) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&genres).Error
	return genres, err
}

func (r *genreRepository) FindAllWithCounts(ctx context.Context, limit int) ([]GenreCount, error) {
	var rows []GenreCount
	q := r.db.WithContext(ctx).
		Table("genres").
		Select("genres.*, COUNT(games.id) AS game_count").
		Joins("LEFT JOIN game_genres ON game_genres.genre_id = genres.id").
		Joins("LEFT JOIN games ON games.id = game_genres.game_id AND games.is_published = ?", true).
		Group("genres.id").
		Order("game_count desc").
		Order("genres.name asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *genreRepository) PublishedGames(ctx context.Context, genreID uuid.UUID, limit, offset int) ([]entity.Game, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Game{}).
		Joins("JOIN game_genres ON game_genres.game_id = games.id").
		Where("game_genres.genre_id = ? AND games.is_published = ?", genreID, true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var games []entity.Game
	err := q.Select("games.*").
		Preload("Developer").
		Preload("Genres").
		Order("games.created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&games).Error
	return games, total, err
}

func (r *genreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Genre{}, "id = ?", id).Error
}
