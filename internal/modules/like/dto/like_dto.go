package dto

import "github.com/google/uuid"

type LikeToggleRequest struct {
	TargetType string    `json:"target_type" binding:"required,oneof=game post review comment user"`
	TargetID   uuid.UUID `json:"target_id" binding:"required"`
}

type LikeStatus struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}
