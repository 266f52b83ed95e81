package game

import (
	"context"
	"fmt"

	"anoa.com/indieplatform/internal/entity"
	gameDto "anoa.com/indieplatform/internal/modules/game/dto"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/metrics"
	"github.com/google/uuid"
)

// ToggleWishlist only sees published games; drafts are NotFound even to their developer.
func (s *gameService) ToggleWishlist(ctx context.Context, userID uuid.UUID, slug string) (*gameDto.WishlistResponse, error) {
	game, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !game.IsPublished {
		return nil, fmt.Errorf("%w: game not found", apperror.ErrNotFound)
	}

	added, err := s.repo.ToggleWishlist(ctx, userID, game.ID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountWishlisted(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	action := "removed"
	if added {
		action = "added"
	}
	metrics.TogglesTotal.WithLabelValues("wishlist", action).Inc()

	return &gameDto.WishlistResponse{
		ToggleResponse: commonDto.ToggleResponse{Action: action, Count: count},
		InWishlist:     added,
	}, nil
}

func (s *gameService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]entity.Wishlist, error) {
	return s.repo.Wishlist(ctx, userID)
}

// GetLibrary returns each published game userID downloaded once, latest download first.
func (s *gameService) GetLibrary(ctx context.Context, userID uuid.UUID) ([]entity.Game, error) {
	ids, err := s.repo.LibraryGameIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	games, err := s.repo.FindPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	ordered := make([]entity.Game, 0, len(games))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}
	return ordered, nil
}

func (s *gameService) GetMyGames(ctx context.Context, userID uuid.UUID) (*gameDto.MyGamesResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsDeveloper {
		return nil, fmt.Errorf("%w: only developers have games", apperror.ErrForbidden)
	}

	games, err := s.repo.ByDeveloper(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &gameDto.MyGamesResponse{Games: games}
	if res.Games == nil {
		res.Games = []entity.Game{}
	}
	for _, g := range games {
		res.TotalDownloads += g.DownloadCount
		if g.IsPublished {
			res.PublishedCount++
		} else {
			res.DraftCount++
		}
	}
	return res, nil
}
