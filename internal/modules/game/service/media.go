package game

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	gameDto "anoa.com/indieplatform/internal/modules/game/dto"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	coverFolder  = "games/covers"
	bannerFolder = "games/banners"
	imageFolder  = "games/screenshots"
	fileFolder   = "games/files"
)

// applyArtwork uploads a new cover and banner when given. It returns the new objects and
// the ones they replace; callers drop the replaced objects only after the row is saved and
// the new ones when saving fails.
func (s *gameService) applyArtwork(ctx context.Context, game *entity.Game, cover, banner *commonDto.UploadFile) (uploaded, replaced []string, err error) {
	if cover != nil {
		obj, err := s.upload(ctx, cover, coverFolder)
		if err != nil {
			return nil, nil, err
		}
		uploaded = append(uploaded, obj)
		if game.CoverImage != "" {
			replaced = append(replaced, game.CoverImage)
		}
		game.CoverImage = obj
	}

	if banner != nil {
		obj, err := s.upload(ctx, banner, bannerFolder)
		if err != nil {
			s.removeObjects(ctx, uploaded...)
			return nil, nil, err
		}
		uploaded = append(uploaded, obj)
		if game.BannerImage != nil {
			replaced = append(replaced, *game.BannerImage)
		}
		game.BannerImage = &obj
	}

	return uploaded, replaced, nil
}

func (s *gameService) upload(ctx context.Context, f *commonDto.UploadFile, folder string) (string, error) {
	if s.fileStorage == nil {
		return "", fmt.Errorf("%w: file storage is not configured", apperror.ErrInternal)
	}
	obj, err := s.fileStorage.Upload(ctx, f.Reader, folder, f.FileName)
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

func (s *gameService) removeObjects(ctx context.Context, urls ...string) {
	if s.fileStorage == nil {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.fileStorage.Delete(ctx, u); err != nil {
			logrus.WithError(err).WithField("url", u).Warn("failed to delete stored object")
		}
	}
}

// SetPublished flips the publication flag. Publishing needs a cover image and at least
// one downloadable file.
func (s *gameService) SetPublished(ctx context.Context, userID uuid.UUID, slug string, published bool) (*entity.Game, error) {
	game, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if published {
		if strings.TrimSpace(game.CoverImage) == "" {
			return nil, fmt.Errorf("%w: add a cover image before publishing", apperror.ErrInvalidOperation)
		}
		files, err := s.repo.CountFiles(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if files == 0 {
			return nil, fmt.Errorf("%w: upload at least one file before publishing", apperror.ErrInvalidOperation)
		}
	}

	game.IsPublished = published
	if err := s.repo.Update(ctx, game, nil); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, game)
	return game, nil
}

// syncIndex mirrors the publication state into search. Failures are logged only.
func (s *gameService) syncIndex(ctx context.Context, game *entity.Game) {
	if s.indexer == nil {
		return
	}

	var err error
	if game.IsPublished {
		err = s.indexer.IndexGame(ctx, game)
	} else {
		err = s.indexer.DeleteGame(ctx, game.ID)
	}
	if err != nil {
		logrus.WithError(err).WithField("game_id", game.ID).Warn("failed to sync search index")
	}
}

func (s *gameService) AddFile(ctx context.Context, userID uuid.UUID, slug string, input gameDto.AddFileInput, upload *commonDto.UploadFile) (*entity.GameFile, error) {
	if upload == nil {
		return nil, fmt.Errorf("%w: file is required", apperror.ErrInvalidInput)
	}

	game, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if s.fileStorage == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", apperror.ErrInternal)
	}
	obj, err := s.fileStorage.Upload(ctx, upload.Reader, fileFolder, upload.FileName)
	if err != nil {
		return nil, err
	}

	size := obj.Size
	if size == 0 {
		size = upload.Size
	}

	version := strings.TrimSpace(input.Version)
	if version == "" {
		version = "1.0"
	}

	file := &entity.GameFile{
		GameID:   game.ID,
		Name:     strings.TrimSpace(input.Name),
		FileURL:  obj.URL,
		Platform: input.Platform,
		Version:  version,
		FileSize: size,
	}
	if err := s.repo.AddFile(ctx, file); err != nil {
		s.removeObjects(ctx, obj.URL)
		return nil, err
	}
	return file, nil
}

func (s *gameService) AddImage(ctx context.Context, userID uuid.UUID, slug string, input gameDto.AddImageInput, upload *commonDto.UploadFile) (*entity.GameImage, error) {
	if upload == nil {
		return nil, fmt.Errorf("%w: image is required", apperror.ErrInvalidInput)
	}

	game, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, upload, imageFolder)
	if err != nil {
		return nil, err
	}

	image := &entity.GameImage{
		GameID:    game.ID,
		ImageURL:  url,
		Caption:   strings.TrimSpace(input.Caption),
		SortOrder: input.Order,
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		s.removeObjects(ctx, url)
		return nil, err
	}
	return image, nil
}
