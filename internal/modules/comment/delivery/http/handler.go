package handler

import (
	"net/http"

	commentDto "anoa.com/indieplatform/internal/modules/comment/dto"
	comment "anoa.com/indieplatform/internal/modules/comment/service"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentHandler struct {
	service  comment.CommentService
	resolver *reference.Resolver
}

func NewCommentHandler(service comment.CommentService, resolver *reference.Resolver) *CommentHandler {
	return &CommentHandler{service: service, resolver: resolver}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req commentDto.CreateCommentRequest
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

	res, err := h.service.CreateComment(c.Request.Context(), userID, comment.CommentInput{
		Target:   ref,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	ref, err := h.resolver.ParseRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListComments(c.Request.Context(), response.OptionalUserID(c), ref, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
