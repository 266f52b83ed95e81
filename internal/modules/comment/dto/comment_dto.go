package dto

import (
	"time"

	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	TargetType string     `json:"target_type" binding:"required,oneof=game post review comment user"`
	TargetID   uuid.UUID  `json:"target_id" binding:"required"`
	ParentID   *uuid.UUID `json:"parent_id"`
	Content    string     `json:"content" binding:"required,max=5000"`
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	Author    commonDto.AuthorResponse `json:"author"`
	Content   string                   `json:"content"`
	ParentID  *uuid.UUID               `json:"parent_id,omitempty"`
	LikeCount int64                    `json:"like_count"`
	Liked     bool                     `json:"liked"`
	Replies   []CommentResponse        `json:"replies"`
	CreatedAt time.Time                `json:"created_at"`
}
