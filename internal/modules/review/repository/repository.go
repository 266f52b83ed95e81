package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	Exists(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, review *entity.Review) error
	ListPublicByGame(ctx context.Context, gameID uuid.UUID, limit, offset int) ([]entity.Review, int64, error)
	RecentPublic(ctx context.Context, limit int) ([]entity.Review, error)
	CountPublic(ctx context.Context) (int64, error)

	UpsertRating(ctx context.Context, rating *entity.GameRating) error
	RatingSummary(ctx context.Context, gameID uuid.UUID) (float64, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create rejects a second review for the same (user, game) with ErrConflict.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return apperror.FromDB(r.db.WithContext(ctx).Omit("User", "Game").Create(review).Error)
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).Preload("User").Preload("Game").Where("id = ?", id).First(&review).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &review, nil
}

func (r *reviewRepository) Exists(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Omit("User", "Game").Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reference.Cascade(tx, review.Reference()); err != nil {
			return err
		}
		return tx.Delete(&entity.Review{}, "id = ?", review.ID).Error
	})
}

func (r *reviewRepository) ListPublicByGame(ctx context.Context, gameID uuid.UUID, limit, offset int) ([]entity.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("game_id = ? AND is_public = ?", gameID, true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reviews := []entity.Review{}
	err := q.Preload("User").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

// RecentPublic only returns reviews of published games.
func (r *reviewRepository) RecentPublic(ctx context.Context, limit int) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Game").
		Joins("JOIN games ON games.id = reviews.game_id AND games.is_published = ?", true).
		Where("reviews.is_public = ?", true).
		Order("reviews.created_at desc").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) CountPublic(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).Where("is_public = ?", true).Count(&count).Error
	return count, err
}

// UpsertRating stores the user's score, replacing any earlier one for the same game.
func (r *reviewRepository) UpsertRating(ctx context.Context, rating *entity.GameRating) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating"}),
	}).Create(rating).Error
	if err != nil {
		return err
	}

	// the generated id is not the stored one when the row already existed
	var stored entity.GameRating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", rating.UserID, rating.GameID).
		First(&stored).Error; err != nil {
		return err
	}
	*rating = stored
	return nil
}

func (r *reviewRepository) RatingSummary(ctx context.Context, gameID uuid.UUID) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.GameRating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("game_id = ?", gameID).
		Scan(&row).Error
	return row.Average, row.Count, err
}
