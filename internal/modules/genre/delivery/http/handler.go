package handler

import (
	"net/http"

	"anoa.com/indieplatform/internal/modules/genre/dto"
	genre "anoa.com/indieplatform/internal/modules/genre/service"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	service genre.GenreService
}

func NewGenreHandler(service genre.GenreService) *GenreHandler {
	return &GenreHandler{service: service}
}

func (h *GenreHandler) CreateGenre(c *gin.Context) {
	var req dto.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	g, err := h.service.CreateGenre(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (h *GenreHandler) GetAllGenres(c *gin.Context) {
	genres, err := h.service.GetAllGenres(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": genres})
}

func (h *GenreHandler) GetGenre(c *gin.Context) {
	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	detail, err := h.service.GetGenre(c.Request.Context(), c.Param("slug"), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
