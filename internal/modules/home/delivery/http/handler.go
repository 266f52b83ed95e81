package handler

import (
	"net/http"

	home "anoa.com/indieplatform/internal/modules/home/service"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	service home.HomeService
}

func NewHomeHandler(service home.HomeService) *HomeHandler {
	return &HomeHandler{service: service}
}

func (h *HomeHandler) GetHome(c *gin.Context) {
	res, err := h.service.GetHome(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *HomeHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
