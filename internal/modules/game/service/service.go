package game

import (
	"context"
	"fmt"
	"io"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	gameDto "anoa.com/indieplatform/internal/modules/game/dto"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	genreRepo "anoa.com/indieplatform/internal/modules/genre/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	view "anoa.com/indieplatform/internal/modules/view/service"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/slug"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Indexer keeps the search index in step with published games.
type Indexer interface {
	IndexGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

type GameService interface {
	ListGames(ctx context.Context, query gameDto.GameQuery) (*gameDto.GameList, error)
	GetGame(ctx context.Context, viewer *uuid.UUID, viewerKey, slug string) (*gameDto.GameDetail, error)
	CreateGame(ctx context.Context, userID uuid.UUID, input gameDto.CreateGameInput, cover, banner *commonDto.UploadFile) (*entity.Game, error)
	UpdateGame(ctx context.Context, userID uuid.UUID, slug string, input gameDto.UpdateGameInput, cover, banner *commonDto.UploadFile) (*entity.Game, error)
	DeleteGame(ctx context.Context, userID uuid.UUID, slug string) error
	SetPublished(ctx context.Context, userID uuid.UUID, slug string, published bool) (*entity.Game, error)

	AddFile(ctx context.Context, userID uuid.UUID, slug string, input gameDto.AddFileInput, upload *commonDto.UploadFile) (*entity.GameFile, error)
	AddImage(ctx context.Context, userID uuid.UUID, slug string, input gameDto.AddImageInput, upload *commonDto.UploadFile) (*entity.GameImage, error)

	// Download opens the chosen build and records the download. The caller closes the reader.
	Download(ctx context.Context, viewer *uuid.UUID, slug string, req gameDto.DownloadRequest) (*entity.GameFile, io.ReadCloser, error)

	ToggleWishlist(ctx context.Context, userID uuid.UUID, slug string) (*gameDto.WishlistResponse, error)
	GetWishlist(ctx context.Context, userID uuid.UUID) ([]entity.Wishlist, error)
	GetLibrary(ctx context.Context, userID uuid.UUID) ([]entity.Game, error)
	GetMyGames(ctx context.Context, userID uuid.UUID) (*gameDto.MyGamesResponse, error)
}

type gameService struct {
	repo        gameRepo.GameRepository
	genres      genreRepo.GenreRepository
	users       userRepo.UserRepository
	fileStorage storage.FileStorage
	views       view.ViewService
	indexer     Indexer
}

func NewGameService(repo gameRepo.GameRepository, genres genreRepo.GenreRepository, users userRepo.UserRepository, fileStorage storage.FileStorage, views view.ViewService, indexer Indexer) GameService {
	return &gameService{
		repo:        repo,
		genres:      genres,
		users:       users,
		fileStorage: fileStorage,
		views:       views,
		indexer:     indexer,
	}
}

const (
	gamesPerPage   = 12
	similarLimit   = 6
	detailReviews  = 10
	maxGamesPerReq = 48
)

var sortOrders = map[string]string{
	"-created_at":     "created_at desc",
	"created_at":      "created_at asc",
	"title":           "title asc",
	"-title":          "title desc",
	"-download_count": "download_count desc",
	"-view_count":     "view_count desc",
}

func (s *gameService) ListGames(ctx context.Context, query gameDto.GameQuery) (*gameDto.GameList, error) {
	page, limit, offset := query.Normalize(gamesPerPage, maxGamesPerReq)

	filter := gameRepo.GameFilter{Query: strings.TrimSpace(query.Q)}

	sort := query.Sort
	if sort == "" {
		sort = "-created_at"
	}
	order, ok := sortOrders[sort]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort %q", apperror.ErrInvalidInput, query.Sort)
	}
	filter.Order = order

	for _, raw := range query.Genres {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid genre id %q", apperror.ErrInvalidInput, raw)
		}
		filter.GenreIDs = append(filter.GenreIDs, id)
	}

	platforms := map[string]bool{
		entity.PlatformWindows: query.Windows,
		entity.PlatformMac:     query.Mac,
		entity.PlatformLinux:   query.Linux,
		entity.PlatformAndroid: query.Android,
		entity.PlatformIOS:     query.IOS,
	}
	for _, p := range []string{entity.PlatformWindows, entity.PlatformMac, entity.PlatformLinux, entity.PlatformAndroid, entity.PlatformIOS} {
		if platforms[p] {
			filter.Platforms = append(filter.Platforms, p)
		}
	}

	games, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []entity.Game{}
	}

	return &gameDto.GameList{Data: games, Meta: commonDto.NewMeta(page, limit, total)}, nil
}

// findVisible returns the game behind slug. Drafts exist only for their developer.
func (s *gameService) findVisible(ctx context.Context, viewer *uuid.UUID, slug string) (*entity.Game, error) {
	game, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !game.IsPublished && (viewer == nil || *viewer != game.DeveloperID) {
		return nil, fmt.Errorf("%w: game not found", apperror.ErrNotFound)
	}
	return game, nil
}

// findOwned returns the game behind slug when userID is its developer.
func (s *gameService) findOwned(ctx context.Context, userID uuid.UUID, slug string) (*entity.Game, error) {
	game, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if game.DeveloperID != userID {
		return nil, fmt.Errorf("%w: only the developer can change this game", apperror.ErrForbidden)
	}
	return game, nil
}

func (s *gameService) GetGame(ctx context.Context, viewer *uuid.UUID, viewerKey, slug string) (*gameDto.GameDetail, error) {
	game, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}

	if s.views == nil || s.views.ShouldCount(ctx, game.Reference(), viewerKey) {
		if err := s.repo.IncrementView(ctx, game.ID); err != nil {
			logrus.WithError(err).WithField("game_id", game.ID).Warn("failed to increment game views")
		} else {
			game.ViewCount++
		}
	}

	detail := &gameDto.GameDetail{
		Game:      game,
		Platforms: game.Platforms(),
		IsOwner:   viewer != nil && *viewer == game.DeveloperID,
	}

	if detail.Reviews, err = s.repo.LatestPublicReviews(ctx, game.ID, detailReviews); err != nil {
		return nil, err
	}
	if detail.SimilarGames, err = s.repo.Similar(ctx, game, similarLimit); err != nil {
		return nil, err
	}
	if detail.Rating.Average, detail.Rating.Count, err = s.repo.RatingSummary(ctx, game.ID); err != nil {
		return nil, err
	}
	if viewer != nil {
		if detail.InWishlist, err = s.repo.InWishlist(ctx, *viewer, game.ID); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

func (s *gameService) CreateGame(ctx context.Context, userID uuid.UUID, input gameDto.CreateGameInput, cover, banner *commonDto.UploadFile) (*entity.Game, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsDeveloper {
		return nil, fmt.Errorf("%w: only developers can create games", apperror.ErrForbidden)
	}

	genres, err := s.loadGenres(ctx, input.GenreIDs)
	if err != nil {
		return nil, err
	}

	gameSlug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	game := &entity.Game{
		Title:            strings.TrimSpace(input.Title),
		Slug:             gameSlug,
		DeveloperID:      user.ID,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Genres:           genres,
		Tags:             datatypes.JSONSlice[string](cleanTags(input.Tags)),
		WindowsSupport:   input.WindowsSupport,
		MacSupport:       input.MacSupport,
		LinuxSupport:     input.LinuxSupport,
		AndroidSupport:   input.AndroidSupport,
		IOSSupport:       input.IOSSupport,
	}

	uploaded, _, err := s.applyArtwork(ctx, game, cover, banner)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, game); err != nil {
		s.removeObjects(ctx, uploaded...)
		return nil, err
	}
	game.Developer = *user

	logrus.WithFields(logrus.Fields{"game_id": game.ID, "developer_id": user.ID}).Info("game created")
	return game, nil
}

func (s *gameService) UpdateGame(ctx context.Context, userID uuid.UUID, slug string, input gameDto.UpdateGameInput, cover, banner *commonDto.UploadFile) (*entity.Game, error) {
	game, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		game.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		game.Description = *input.Description
	}
	if input.ShortDescription != nil {
		game.ShortDescription = *input.ShortDescription
	}
	if input.Tags != nil {
		game.Tags = datatypes.JSONSlice[string](cleanTags(input.Tags))
	}
	setBool(&game.WindowsSupport, input.WindowsSupport)
	setBool(&game.MacSupport, input.MacSupport)
	setBool(&game.LinuxSupport, input.LinuxSupport)
	setBool(&game.AndroidSupport, input.AndroidSupport)
	setBool(&game.IOSSupport, input.IOSSupport)

	var genres []entity.Genre
	if input.GenreIDs != nil {
		if genres, err = s.loadGenres(ctx, input.GenreIDs); err != nil {
			return nil, err
		}
		if genres == nil {
			genres = []entity.Genre{}
		}
	}

	uploaded, replaced, err := s.applyArtwork(ctx, game, cover, banner)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, game, genres); err != nil {
		s.removeObjects(ctx, uploaded...)
		return nil, err
	}
	s.removeObjects(ctx, replaced...)

	s.syncIndex(ctx, game)
	return game, nil
}

func (s *gameService) DeleteGame(ctx context.Context, userID uuid.UUID, slug string) error {
	game, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, game); err != nil {
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteGame(ctx, game.ID); err != nil {
			logrus.WithError(err).WithField("game_id", game.ID).Warn("failed to remove game from search index")
		}
	}

	urls := []string{game.CoverImage}
	if game.BannerImage != nil {
		urls = append(urls, *game.BannerImage)
	}
	for _, f := range game.Files {
		urls = append(urls, f.FileURL)
	}
	for _, img := range game.Images {
		urls = append(urls, img.ImageURL)
	}
	s.removeObjects(ctx, urls...)

	logrus.WithFields(logrus.Fields{"game_id": game.ID, "developer_id": userID}).Info("game deleted")
	return nil
}

func (s *gameService) loadGenres(ctx context.Context, raw []string) ([]entity.Genre, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid genre id %q", apperror.ErrInvalidInput, r)
		}
		ids = append(ids, id)
	}

	genres, err := s.genres.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(ids) {
		return nil, fmt.Errorf("%w: unknown genre", apperror.ErrInvalidInput)
	}
	return genres, nil
}

func (s *gameService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	exists, err := s.repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return slug.WithSuffix(base), nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
