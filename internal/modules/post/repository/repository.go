package repository

import (
	"context"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostFilter struct {
	Type   string
	GameID *uuid.UUID
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindBySlug(ctx context.Context, slug string) (*entity.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, post *entity.Post) error
	ListPublished(ctx context.Context, filter PostFilter, limit, offset int) ([]entity.Post, int64, error)
	Recent(ctx context.Context, limit int) ([]entity.Post, error)
	AllPublished(ctx context.Context) ([]entity.Post, error)
	IncrementView(ctx context.Context, postID uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return apperror.FromDB(r.db.WithContext(ctx).Omit("Author", "Game").Create(post).Error)
}

func (r *postRepository) FindBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Game").
		Where("slug = ?", slug).
		First(&post).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return apperror.FromDB(r.db.WithContext(ctx).Omit("Author", "Game").Save(post).Error)
}

func (r *postRepository) Delete(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reference.Cascade(tx, post.Reference()); err != nil {
			return err
		}
		return tx.Delete(&entity.Post{}, "id = ?", post.ID).Error
	})
}

// ListPublished orders pinned posts first, then by publication time.
func (r *postRepository) ListPublished(ctx context.Context, filter PostFilter, limit, offset int) ([]entity.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Post{}).Where("is_published = ?", true)
	if filter.Type != "" {
		q = q.Where("post_type = ?", filter.Type)
	}
	if filter.GameID != nil {
		q = q.Where("game_id = ?", *filter.GameID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []entity.Post{}
	err := q.Preload("Author").Preload("Game").
		Order("is_pinned DESC").
		Order("published_at DESC").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Recent(ctx context.Context, limit int) ([]entity.Post, error) {
	posts := []entity.Post{}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("is_published = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) AllPublished(ctx context.Context) ([]entity.Post, error) {
	posts := []entity.Post{}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Game").
		Where("is_published = ?", true).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) IncrementView(ctx context.Context, postID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}
