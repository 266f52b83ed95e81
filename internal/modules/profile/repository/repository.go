package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository covers the follow graph and the read models a profile page shows.
type ProfileRepository interface {
	ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)

	PublishedGames(ctx context.Context, developerID uuid.UUID, limit int) ([]entity.Game, error)
	RecentPublicReviews(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Review, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	follow := &entity.Follow{FollowerID: followerID, FollowingID: followingID}
	return database.Toggle(ctx, r.db, follow, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *profileRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *profileRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// PublishedGames lists the developer's published games, newest first. limit <= 0 means all.
func (r *profileRepository) PublishedGames(ctx context.Context, developerID uuid.UUID, limit int) ([]entity.Game, error) {
	q := r.db.WithContext(ctx).
		Preload("Genres").
		Where("developer_id = ? AND is_published = ?", developerID, true).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	games := []entity.Game{}
	err := q.Find(&games).Error
	return games, err
}

func (r *profileRepository) RecentPublicReviews(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ? AND is_public = ?", userID, true).
		Order("created_at desc").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
