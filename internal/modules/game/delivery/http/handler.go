package handler

import (
	"fmt"
	"net/http"
	"path"

	gameDto "anoa.com/indieplatform/internal/modules/game/dto"
	game "anoa.com/indieplatform/internal/modules/game/service"
	"anoa.com/indieplatform/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type GameHandler struct {
	service game.GameService
}

func NewGameHandler(service game.GameService) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) ListGames(c *gin.Context) {
	var query gameDto.GameQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ListGames(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *GameHandler) GetGame(c *gin.Context) {
	viewer := response.OptionalUserID(c)
	viewerKey := "ip:" + c.ClientIP()
	if viewer != nil {
		viewerKey = viewer.String()
	}

	res, err := h.service.GetGame(c.Request.Context(), viewer, viewerKey, c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input gameDto.CreateGameInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	cover, closeCover, err := response.FormFile(c, "cover_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeCover()

	banner, closeBanner, err := response.FormFile(c, "banner_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeBanner()

	g, err := h.service.CreateGame(c.Request.Context(), userID, input, cover, banner)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input gameDto.UpdateGameInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	cover, closeCover, err := response.FormFile(c, "cover_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeCover()

	banner, closeBanner, err := response.FormFile(c, "banner_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeBanner()

	g, err := h.service.UpdateGame(c.Request.Context(), userID, c.Param("slug"), input, cover, banner)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteGame(c.Request.Context(), userID, c.Param("slug")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
}

func (h *GameHandler) SetPublished(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input gameDto.PublishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	g, err := h.service.SetPublished(c.Request.Context(), userID, c.Param("slug"), input.Published)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *GameHandler) AddFile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input gameDto.AddFileInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	upload, closeUpload, err := response.FormFile(c, "file")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeUpload()

	file, err := h.service.AddFile(c.Request.Context(), userID, c.Param("slug"), input, upload)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (h *GameHandler) AddImage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input gameDto.AddImageInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	upload, closeUpload, err := response.FormFile(c, "image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeUpload()

	image, err := h.service.AddImage(c.Request.Context(), userID, c.Param("slug"), input, upload)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

// Download streams the build as an attachment.
func (h *GameHandler) Download(c *gin.Context) {
	file, rc, err := h.service.Download(c.Request.Context(), response.OptionalUserID(c), c.Param("slug"), gameDto.DownloadRequest{
		FileID:    c.Param("file_id"),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer rc.Close()

	name := path.Base(file.FileURL)
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	}
	size := file.FileSize
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", rc, headers)

	logrus.WithFields(logrus.Fields{"file_id": file.ID, "bytes": size}).Debug("download streamed")
}

func (h *GameHandler) ToggleWishlist(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ToggleWishlist(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *GameHandler) GetWishlist(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	entries, err := h.service.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *GameHandler) GetLibrary(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	games, err := h.service.GetLibrary(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": games})
}

func (h *GameHandler) GetMyGames(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetMyGames(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
