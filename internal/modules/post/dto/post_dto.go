package dto

import (
	commonDto "anoa.com/indieplatform/pkg/dto"
)

type PostQuery struct {
	commonDto.PageQuery
	Type string `form:"type" binding:"omitempty,oneof=news dev_log release update general"`
	Game string `form:"game"`
}

type CreatePostInput struct {
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Content     string `form:"content" json:"content" binding:"required"`
	Excerpt     string `form:"excerpt" json:"excerpt" binding:"omitempty,max=300"`
	PostType    string `form:"post_type" json:"post_type" binding:"omitempty,oneof=news dev_log release update general"`
	GameID      string `form:"game_id" json:"game_id" binding:"omitempty,uuid"`
	IsPublished bool   `form:"is_published" json:"is_published"`
}

type UpdatePostInput struct {
	Title    *string `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string `form:"content" json:"content"`
	Excerpt  *string `form:"excerpt" json:"excerpt" binding:"omitempty,max=300"`
	PostType *string `form:"post_type" json:"post_type" binding:"omitempty,oneof=news dev_log release update general"`
	// Pinning is reserved for moderators.
	IsPinned *bool `form:"is_pinned" json:"is_pinned"`
}

type PublishInput struct {
	Published bool `json:"published"`
}
