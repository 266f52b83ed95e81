package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/indieplatform/pkg/apperror"
	"anoa.com/indieplatform/pkg/dto"
	"github.com/gin-gonic/gin"
)

// FormFile opens the multipart file under field. A missing field yields a nil file and
// a no-op closer; the caller must call the closer once the upload is consumed.
func FormFile(c *gin.Context, field string) (*dto.UploadFile, func(), error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %s: %v", apperror.ErrInvalidInput, field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: cannot read %s", apperror.ErrInvalidInput, field)
	}

	return &dto.UploadFile{
		Reader:   file,
		FileName: header.Filename,
		Size:     header.Size,
	}, func() { _ = file.Close() }, nil
}
