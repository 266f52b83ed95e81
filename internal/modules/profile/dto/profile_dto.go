package dto

import (
	"anoa.com/indieplatform/internal/entity"
	commonDto "anoa.com/indieplatform/pkg/dto"
)

type UpdateProfileInput struct {
	Bio                *string `form:"bio" json:"bio" binding:"omitempty,max=500"`
	Location           *string `form:"location" json:"location" binding:"omitempty,max=100"`
	Website            *string `form:"website" json:"website" binding:"omitempty,max=200"`
	Twitter            *string `form:"twitter" json:"twitter" binding:"omitempty,max=100"`
	Github             *string `form:"github" json:"github" binding:"omitempty,max=100"`
	DateOfBirth        *string `form:"date_of_birth" json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	PublicProfile      *bool   `form:"public_profile" json:"public_profile"`
	EmailNotifications *bool   `form:"email_notifications" json:"email_notifications"`
}

type UpdateDeveloperProfileInput struct {
	DisplayName         *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Company             *string `json:"company" binding:"omitempty,max=100"`
	Website             *string `json:"website" binding:"omitempty,max=200"`
	Bio                 *string `json:"bio" binding:"omitempty,max=1000"`
	RequestVerification *bool   `json:"request_verification"`
}

type ProfileResponse struct {
	User           *entity.User    `json:"user"`
	FollowersCount int64           `json:"followers_count"`
	FollowingCount int64           `json:"following_count"`
	IsFollowing    bool            `json:"is_following"`
	IsOwner        bool            `json:"is_owner"`
	Games          []entity.Game   `json:"games"`
	RecentReviews  []entity.Review `json:"recent_reviews"`
}

type DeveloperResponse struct {
	User           *entity.User             `json:"user"`
	Profile        *entity.DeveloperProfile `json:"developer_profile"`
	Games          []entity.Game            `json:"games"`
	TotalDownloads int64                    `json:"total_downloads"`
	FollowersCount int64                    `json:"followers_count"`
}

type DeveloperQuery struct {
	commonDto.PageQuery
	Q        string `form:"q"`
	Verified bool   `form:"verified"`
}

type DeveloperList = commonDto.Paginated[entity.User]

type FollowResponse struct {
	commonDto.ToggleResponse
	IsFollowing bool `json:"is_following"`
}
