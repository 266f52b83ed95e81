package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type localStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage keeps objects under dir and hands out URLs below baseURL (e.g. "/media").
func NewLocalStorage(dir, baseURL string) (FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &localStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *localStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileName))
	rel := filepath.ToSlash(filepath.Join(folder, name))
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(full)
		return nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return &Object{URL: s.baseURL + "/" + rel, Size: n}, nil
}

func (s *localStorage) Delete(_ context.Context, fileURL string) error {
	full, err := s.resolve(fileURL)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *localStorage) Open(_ context.Context, fileURL string) (io.ReadCloser, error) {
	full, err := s.resolve(fileURL)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, fileURL)
	}
	return f, err
}

func (s *localStorage) resolve(fileURL string) (string, error) {
	rel := strings.TrimPrefix(fileURL, s.baseURL+"/")
	clean := filepath.Clean("/" + rel)
	if rel == fileURL || clean == "/" {
		return "", fmt.Errorf("%w: %s is not served by this storage", ErrObjectNotFound, fileURL)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
