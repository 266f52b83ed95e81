package dto

import (
	"anoa.com/indieplatform/internal/entity"
	commonDto "anoa.com/indieplatform/pkg/dto"
)

type CreateReviewInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Content     string `json:"content" binding:"required"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Recommended bool   `json:"recommended"`
	IsPublic    *bool  `json:"is_public"`
}

type UpdateReviewInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content     *string `json:"content" binding:"omitempty,min=1"`
	Rating      *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Recommended *bool   `json:"recommended"`
	IsPublic    *bool   `json:"is_public"`
}

type RateGameInput struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type RatingResponse struct {
	Rating  entity.GameRating `json:"rating"`
	Average float64           `json:"average"`
	Count   int64             `json:"count"`
}

type ReviewList = commonDto.Paginated[entity.Review]
