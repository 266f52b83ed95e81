package dto

import (
	"anoa.com/indieplatform/internal/entity"
	commonDto "anoa.com/indieplatform/pkg/dto"
)

type NotificationList = commonDto.Paginated[entity.Notification]

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
