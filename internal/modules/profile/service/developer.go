package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	profileDto "anoa.com/indieplatform/internal/modules/profile/dto"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"github.com/google/uuid"
)

// EnsureDeveloperProfile returns the developer profile of userID, creating it with the
// username as display name on first call.
func (s *profileService) EnsureDeveloperProfile(ctx context.Context, userID uuid.UUID) (*entity.DeveloperProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsDeveloper {
		return nil, fmt.Errorf("%w: only developers have a developer profile", apperror.ErrForbidden)
	}

	profile := &entity.DeveloperProfile{UserID: user.ID, DisplayName: user.Username}
	if _, err := s.users.EnsureDeveloperProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateDeveloperProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateDeveloperProfileInput) (*entity.DeveloperProfile, error) {
	profile, err := s.EnsureDeveloperProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name cannot be empty", apperror.ErrInvalidInput)
		}
		profile.DisplayName = name
	}
	if input.Company != nil {
		profile.Company = strings.TrimSpace(*input.Company)
	}
	if input.Website != nil {
		profile.Website = strings.TrimSpace(*input.Website)
	}
	if input.Bio != nil {
		profile.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.RequestVerification != nil && *input.RequestVerification && !profile.Verified {
		profile.VerificationRequested = true
	}

	if err := s.users.UpdateDeveloperProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) GetDeveloper(ctx context.Context, viewer *uuid.UUID, username string) (*profileDto.DeveloperResponse, error) {
	user, err := s.visibleUser(ctx, viewer, username)
	if err != nil {
		return nil, err
	}
	if !user.IsDeveloper {
		return nil, fmt.Errorf("%w: %s is not a developer", apperror.ErrNotFound, username)
	}

	profile := user.DeveloperProfile
	if profile == nil {
		if profile, err = s.users.FindDeveloperProfile(ctx, user.ID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("%w: developer profile not set up", apperror.ErrNotFound)
			}
			return nil, err
		}
	}

	games, err := s.repo.PublishedGames(ctx, user.ID, 0)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, g := range games {
		total += g.DownloadCount
	}

	followers, err := s.repo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.DeveloperResponse{
		User:           user,
		Profile:        profile,
		Games:          games,
		TotalDownloads: total,
		FollowersCount: followers,
	}, nil
}

func (s *profileService) ListDevelopers(ctx context.Context, query profileDto.DeveloperQuery) (*profileDto.DeveloperList, error) {
	page, limit, offset := query.Normalize(12, 50)

	users, total, err := s.users.ListDevelopers(ctx, userRepo.DeveloperFilter{
		Query:        strings.TrimSpace(query.Q),
		VerifiedOnly: query.Verified,
	}, limit, offset)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}

	return &profileDto.DeveloperList{
		Data: users,
		Meta: commonDto.NewMeta(page, limit, total),
	}, nil
}
