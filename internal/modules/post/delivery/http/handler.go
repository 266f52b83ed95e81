package handler

import (
	"net/http"

	postDto "anoa.com/indieplatform/internal/modules/post/dto"
	post "anoa.com/indieplatform/internal/modules/post/service"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service post.PostService
}

func NewPostHandler(service post.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	var query postDto.PostQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListPosts(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	viewer := response.OptionalUserID(c)
	viewerKey := "ip:" + c.ClientIP()
	if viewer != nil {
		viewerKey = viewer.String()
	}

	p, err := h.service.GetPost(c.Request.Context(), viewer, viewerKey, c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input postDto.CreatePostInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	image, closeImage, err := response.FormFile(c, "featured_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeImage()

	p, err := h.service.CreatePost(c.Request.Context(), userID, input, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input postDto.UpdatePostInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	image, closeImage, err := response.FormFile(c, "featured_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeImage()

	p, err := h.service.UpdatePost(c.Request.Context(), userID, c.Param("slug"), input, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), userID, c.Param("slug")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *PostHandler) SetPublished(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input postDto.PublishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.SetPublished(c.Request.Context(), userID, c.Param("slug"), input.Published)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
