package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	// ListRoots pages the public top-level comments of target, newest first, with
	// their public replies oldest first.
	ListRoots(ctx context.Context, target entity.Ref, limit, offset int) ([]entity.Comment, int64, error)
	Delete(ctx context.Context, comment *entity.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Replies").Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListRoots(ctx context.Context, target entity.Ref, limit, offset int) ([]entity.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Comment{}).
		Where("target_type = ? AND target_id = ? AND parent_id IS NULL AND is_public = ?", target.Kind, target.ID, true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	comments := []entity.Comment{}
	err := q.Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_public = ?", true).Order("created_at ASC, id ASC")
		}).
		Preload("Replies.User").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, total, err
}

// Delete removes the comment, its replies and everything attached to either.
func (r *commentRepository) Delete(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reference.Cascade(tx, comment.Reference()); err != nil {
			return err
		}
		return tx.Delete(&entity.Comment{}, "id = ?", comment.ID).Error
	})
}
