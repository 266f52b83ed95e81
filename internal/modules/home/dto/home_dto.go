package dto

import (
	"anoa.com/indieplatform/internal/entity"
	genreDto "anoa.com/indieplatform/internal/modules/genre/dto"
)

type PlatformStats struct {
	PublishedGames int64 `json:"published_games"`
	Developers     int64 `json:"developers"`
	TotalDownloads int64 `json:"total_downloads"`
	PublicReviews  int64 `json:"public_reviews"`
}

type HomeResponse struct {
	Featured      []entity.Game            `json:"featured"`
	NewGames      []entity.Game            `json:"new_games"`
	PopularGames  []entity.Game            `json:"popular_games"`
	Genres        []genreDto.GenreResponse `json:"genres"`
	RecentReviews []entity.Review          `json:"recent_reviews"`
	RecentPosts   []entity.Post            `json:"recent_posts"`
	Stats         PlatformStats            `json:"stats"`
}
