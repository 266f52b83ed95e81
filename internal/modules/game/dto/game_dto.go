package dto

import (
	"anoa.com/indieplatform/internal/entity"
	commonDto "anoa.com/indieplatform/pkg/dto"
)

// GameQuery binds the catalog filters. Genre takes repeated ids (?genre=a&genre=b).
type GameQuery struct {
	commonDto.PageQuery
	Q       string   `form:"q"`
	Genres  []string `form:"genre"`
	Windows bool     `form:"windows"`
	Mac     bool     `form:"mac"`
	Linux   bool     `form:"linux"`
	Android bool     `form:"android"`
	IOS     bool     `form:"ios"`
	Sort    string   `form:"sort"`
}

type CreateGameInput struct {
	Title            string   `form:"title" json:"title" binding:"required,max=200"`
	Description      string   `form:"description" json:"description" binding:"required"`
	ShortDescription string   `form:"short_description" json:"short_description" binding:"required,max=300"`
	GenreIDs         []string `form:"genre_ids" json:"genre_ids" binding:"omitempty,dive,uuid"`
	Tags             []string `form:"tags" json:"tags" binding:"omitempty,max=20,dive,max=50"`
	WindowsSupport   bool     `form:"windows_support" json:"windows_support"`
	MacSupport       bool     `form:"mac_support" json:"mac_support"`
	LinuxSupport     bool     `form:"linux_support" json:"linux_support"`
	AndroidSupport   bool     `form:"android_support" json:"android_support"`
	IOSSupport       bool     `form:"ios_support" json:"ios_support"`
}

type UpdateGameInput struct {
	Title            *string  `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string  `form:"description" json:"description"`
	ShortDescription *string  `form:"short_description" json:"short_description" binding:"omitempty,max=300"`
	GenreIDs         []string `form:"genre_ids" json:"genre_ids" binding:"omitempty,dive,uuid"`
	Tags             []string `form:"tags" json:"tags" binding:"omitempty,max=20,dive,max=50"`
	WindowsSupport   *bool    `form:"windows_support" json:"windows_support"`
	MacSupport       *bool    `form:"mac_support" json:"mac_support"`
	LinuxSupport     *bool    `form:"linux_support" json:"linux_support"`
	AndroidSupport   *bool    `form:"android_support" json:"android_support"`
	IOSSupport       *bool    `form:"ios_support" json:"ios_support"`
}

type PublishInput struct {
	Published bool `json:"published"`
}

type AddFileInput struct {
	Name     string `form:"name" binding:"required,max=200"`
	Platform string `form:"platform" binding:"required,oneof=windows mac linux android ios web"`
	Version  string `form:"version" binding:"omitempty,max=50"`
}

type AddImageInput struct {
	Caption string `form:"caption" binding:"omitempty,max=200"`
	Order   int    `form:"order" binding:"omitempty,min=0"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type GameDetail struct {
	Game         *entity.Game    `json:"game"`
	Platforms    []string        `json:"platforms"`
	Reviews      []entity.Review `json:"reviews"`
	SimilarGames []entity.Game   `json:"similar_games"`
	Rating       RatingSummary   `json:"rating"`
	InWishlist   bool            `json:"in_wishlist"`
	IsOwner      bool            `json:"is_owner"`
}

type GameList = commonDto.Paginated[entity.Game]

type MyGamesResponse struct {
	Games          []entity.Game `json:"games"`
	TotalDownloads int64         `json:"total_downloads"`
	PublishedCount int           `json:"published_count"`
	DraftCount     int           `json:"draft_count"`
}

type WishlistResponse struct {
	commonDto.ToggleResponse
	InWishlist bool `json:"in_wishlist"`
}

// DownloadRequest carries who asked for a build and from where.
type DownloadRequest struct {
	FileID    string
	UserAgent string
	IPAddress string
}
