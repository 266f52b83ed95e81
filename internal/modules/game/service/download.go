package game

import (
	"context"
	"errors"
	"fmt"
	"io"

	"anoa.com/indieplatform/internal/entity"
	gameDto "anoa.com/indieplatform/internal/modules/game/dto"
	"anoa.com/indieplatform/pkg/apperror"
	"anoa.com/indieplatform/pkg/metrics"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Download picks the requested file, or the game's newest file, opens it and records the
// download. The audit row and all counters are written together or not at all, and
// nothing is recorded when the stored object cannot be opened. Drafts are NotFound,
// even to their developer.
func (s *gameService) Download(ctx context.Context, viewer *uuid.UUID, slug string, req gameDto.DownloadRequest) (*entity.GameFile, io.ReadCloser, error) {
	game, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !game.IsPublished {
		return nil, nil, fmt.Errorf("%w: game not found", apperror.ErrNotFound)
	}

	file, err := s.pickFile(ctx, game, req.FileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.openFile(ctx, file)
	if err != nil {
		return nil, nil, err
	}

	download := &entity.Download{
		UserID:     viewer,
		GameID:     game.ID,
		GameFileID: &file.ID,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	}
	if err := s.repo.RecordDownload(ctx, download); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	metrics.DownloadsTotal.Inc()

	logrus.WithFields(logrus.Fields{
		"game_id": game.ID,
		"file_id": file.ID,
		"ip":      req.IPAddress,
	}).Debug("download recorded")

	file.DownloadCount++
	return file, rc, nil
}

func (s *gameService) pickFile(ctx context.Context, game *entity.Game, rawID string) (*entity.GameFile, error) {
	var (
		file *entity.GameFile
		err  error
	)
	if rawID != "" {
		fileID, perr := uuid.Parse(rawID)
		if perr != nil {
			return nil, fmt.Errorf("%w: file not found", apperror.ErrNotFound)
		}
		file, err = s.repo.FindFile(ctx, game.ID, fileID)
	} else {
		file, err = s.repo.FirstFile(ctx, game.ID)
	}
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("%w: no downloadable file for %s", apperror.ErrNotFound, game.Slug)
	}
	return file, err
}

func (s *gameService) openFile(ctx context.Context, file *entity.GameFile) (io.ReadCloser, error) {
	if s.fileStorage == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", apperror.ErrInternal)
	}
	rc, err := s.fileStorage.Open(ctx, file.FileURL)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: file content is missing", apperror.ErrNotFound)
	}
	return rc, err
}
