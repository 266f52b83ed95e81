package response

import (
	"errors"
	"net/http"

	"anoa.com/indieplatform/pkg/apperror"
	"anoa.com/indieplatform/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the viewer when a valid token was presented, nil for anonymous requests.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &userID
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).WithError(err).Error("internal error")
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error(), "code": apperror.Code(err)})
		return
	}

	c.JSON(code, gin.H{"error": err.Error(), "code": apperror.Code(err)})
}

// BindError reports a gin binding failure with readable field messages.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": validator.FormatValidationError(err),
		"code":  apperror.Code(apperror.ErrBadRequest),
	})
}

// IsNotFound is a small helper for handlers that treat absence specially.
func IsNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
