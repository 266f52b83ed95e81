package dto

import (
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
)

type CreateReportRequest struct {
	TargetType  string    `json:"target_type" binding:"required,oneof=game post review comment user"`
	TargetID    uuid.UUID `json:"target_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required,oneof=spam harassment hate_speech inappropriate copyright other"`
	Description string    `json:"description" binding:"max=2000"`
}

type ReportQuery struct {
	commonDto.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending reviewed resolved dismissed"`
}

type UpdateReportStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=reviewed resolved dismissed"`
	ModeratorNote string `json:"moderator_note" binding:"max=2000"`
}
