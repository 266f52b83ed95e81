package dto

import (
	"anoa.com/indieplatform/internal/entity"
	commonDto "anoa.com/indieplatform/pkg/dto"
)

type CreateGenreRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// GenreResponse is a genre with the number of published games carrying it.
type GenreResponse struct {
	entity.Genre
	GameCount int64 `json:"game_count"`
}

type GenreDetail struct {
	Genre entity.Genre                     `json:"genre"`
	Games commonDto.Paginated[entity.Game] `json:"games"`
}
