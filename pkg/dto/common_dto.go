package dto

import (
	"io"
	"math"
)

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type Paginated[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps page and limit, using def when limit is unset and max as the ceiling.
func (p PageQuery) Normalize(def, max int) (page, limit, offset int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit, (page - 1) * limit
}

func NewMeta(page, limit int, total int64) PaginationMeta {
	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalItems:  total,
		Limit:       limit,
	}
}

type AuthorResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// ToggleResponse is the body of every membership toggle endpoint.
type ToggleResponse struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// UploadFile is a multipart payload handed from a handler to a service.
type UploadFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}
