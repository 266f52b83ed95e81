package handler

import (
	"net/http"

	"anoa.com/indieplatform/internal/modules/reference"
	reportDto "anoa.com/indieplatform/internal/modules/report/dto"
	report "anoa.com/indieplatform/internal/modules/report/service"
	"anoa.com/indieplatform/pkg/apperror"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	service  report.ReportService
	resolver *reference.Resolver
}

func NewReportHandler(service report.ReportService, resolver *reference.Resolver) *ReportHandler {
	return &ReportHandler{service: service, resolver: resolver}
}

func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req reportDto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ref, err := h.resolver.ParseRef(req.TargetType, req.TargetID.String())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CreateReport(c.Request.Context(), userID, report.ReportInput{
		Target:      ref,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	var query reportDto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListReports(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req reportDto.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	moderatorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), moderatorID, id, req.Status, req.ModeratorNote)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
