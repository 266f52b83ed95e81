package handler

import (
	"net/http"

	likeDto "anoa.com/indieplatform/internal/modules/like/dto"
	like "anoa.com/indieplatform/internal/modules/like/service"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service  like.LikeService
	resolver *reference.Resolver
}

func NewLikeHandler(service like.LikeService, resolver *reference.Resolver) *LikeHandler {
	return &LikeHandler{service: service, resolver: resolver}
}

func (h *LikeHandler) ToggleLike(c *gin.Context) {
	var req likeDto.LikeToggleRequest
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

	res, err := h.service.Toggle(c.Request.Context(), userID, ref)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LikeHandler) GetLikes(c *gin.Context) {
	ref, err := h.resolver.ParseRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status, err := h.service.Status(c.Request.Context(), response.OptionalUserID(c), ref)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
