package storage

import (
	"context"
	"io"
)

// Object describes an uploaded payload.
type Object struct {
	URL  string
	Size int64
}

// FileStorage stores binary payloads for covers, screenshots, avatars and game builds.
type FileStorage interface {
	// Upload stores r under folder and returns the retrievable URL and the stored size in bytes.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (*Object, error)
	// Delete removes the object behind fileURL. Missing objects are not an error.
	Delete(ctx context.Context, fileURL string) error
	// Open streams the object behind fileURL.
	Open(ctx context.Context, fileURL string) (io.ReadCloser, error)
}

func isImage(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp":
		return true
	}
	return false
}
