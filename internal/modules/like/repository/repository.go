package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	// Toggle returns true when the like was added, false when it was removed.
	Toggle(ctx context.Context, userID uuid.UUID, ref entity.Ref) (bool, error)
	Count(ctx context.Context, ref entity.Ref) (int64, error)
	Exists(ctx context.Context, userID uuid.UUID, ref entity.Ref) (bool, error)
	CountByTargets(ctx context.Context, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedTargets(ctx context.Context, userID uuid.UUID, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID uuid.UUID, ref entity.Ref) (bool, error) {
	like := &entity.Like{UserID: userID, TargetType: ref.Kind, TargetID: ref.ID}
	return database.Toggle(ctx, r.db, like,
		"user_id = ? AND target_type = ? AND target_id = ?", userID, ref.Kind, ref.ID)
}

func (r *likeRepository) Count(ctx context.Context, ref entity.Ref) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where("target_type = ? AND target_id = ?", ref.Kind, ref.ID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) Exists(ctx context.Context, userID uuid.UUID, ref entity.Ref) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, ref.Kind, ref.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountByTargets(ctx context.Context, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	type Result struct {
		TargetID uuid.UUID
		Count    int64
	}
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var results []Result
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Select("target_id, count(*) as count").
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.TargetID] = res.Count
	}
	return counts, nil
}

func (r *likeRepository) LikedTargets(ctx context.Context, userID uuid.UUID, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return liked, nil
	}

	var targets []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, kind, ids).
		Pluck("target_id", &targets).Error
	if err != nil {
		return nil, err
	}

	for _, id := range targets {
		liked[id] = true
	}
	return liked, nil
}
