package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/entity"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	profileDto "anoa.com/indieplatform/internal/modules/profile/dto"
	profileRepo "anoa.com/indieplatform/internal/modules/profile/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProfileService interface {
	GetProfileByUsername(ctx context.Context, viewer *uuid.UUID, username string) (*profileDto.ProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*entity.User, error)
	SearchUsers(ctx context.Context, query string) ([]entity.User, error)

	EnsureDeveloperProfile(ctx context.Context, userID uuid.UUID) (*entity.DeveloperProfile, error)
	UpdateDeveloperProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateDeveloperProfileInput) (*entity.DeveloperProfile, error)
	GetDeveloper(ctx context.Context, viewer *uuid.UUID, username string) (*profileDto.DeveloperResponse, error)
	ListDevelopers(ctx context.Context, query profileDto.DeveloperQuery) (*profileDto.DeveloperList, error)

	ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (*profileDto.FollowResponse, error)
	ToggleFollowByUsername(ctx context.Context, followerID uuid.UUID, username string) (*profileDto.FollowResponse, error)
}

type profileService struct {
	users               userRepo.UserRepository
	repo                profileRepo.ProfileRepository
	fileStorage         storage.FileStorage
	notificationService notifService.NotificationService
}

func NewProfileService(users userRepo.UserRepository, repo profileRepo.ProfileRepository, fileStorage storage.FileStorage, notificationService notifService.NotificationService) ProfileService {
	return &profileService{
		users:               users,
		repo:                repo,
		fileStorage:         fileStorage,
		notificationService: notificationService,
	}
}

const (
	profileGamesLimit   = 6
	profileReviewsLimit = 5
	userSearchLimit     = 10
)

// visibleUser loads username, hiding private profiles from everyone but their owner.
func (s *profileService) visibleUser(ctx context.Context, viewer *uuid.UUID, username string) (*entity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.PublicProfile && (viewer == nil || *viewer != user.ID) {
		return nil, fmt.Errorf("%w: user not found", apperror.ErrNotFound)
	}
	return user, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, viewer *uuid.UUID, username string) (*profileDto.ProfileResponse, error) {
	user, err := s.visibleUser(ctx, viewer, username)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, viewer, user)
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, &userID, user)
}

func (s *profileService) buildProfile(ctx context.Context, viewer *uuid.UUID, user *entity.User) (*profileDto.ProfileResponse, error) {
	res := &profileDto.ProfileResponse{
		User:    user,
		IsOwner: viewer != nil && *viewer == user.ID,
		Games:   []entity.Game{},
	}

	var err error
	if res.FollowersCount, err = s.repo.CountFollowers(ctx, user.ID); err != nil {
		return nil, err
	}
	if res.FollowingCount, err = s.repo.CountFollowing(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewer != nil && !res.IsOwner {
		if res.IsFollowing, err = s.repo.IsFollowing(ctx, *viewer, user.ID); err != nil {
			return nil, err
		}
	}

	if user.IsDeveloper {
		if res.Games, err = s.repo.PublishedGames(ctx, user.ID, profileGamesLimit); err != nil {
			return nil, err
		}
	}
	if res.RecentReviews, err = s.repo.RecentPublicReviews(ctx, user.ID, profileReviewsLimit); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}
	if input.Website != nil {
		user.Website = strings.TrimSpace(*input.Website)
	}
	if input.Twitter != nil {
		user.Twitter = strings.TrimPrefix(strings.TrimSpace(*input.Twitter), "@")
	}
	if input.Github != nil {
		user.Github = strings.TrimSpace(*input.Github)
	}
	if input.DateOfBirth != nil {
		if *input.DateOfBirth == "" {
			user.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *input.DateOfBirth)
			if err != nil {
				return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", apperror.ErrInvalidInput)
			}
			user.DateOfBirth = &dob
		}
	}
	if input.PublicProfile != nil {
		user.PublicProfile = *input.PublicProfile
	}
	if input.EmailNotifications != nil {
		user.EmailNotifications = *input.EmailNotifications
	}

	var oldAvatar string
	if avatar != nil && avatar.Reader != nil && s.fileStorage != nil {
		obj, err := s.fileStorage.Upload(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		if user.AvatarURL != nil {
			oldAvatar = *user.AvatarURL
		}
		user.AvatarURL = &obj.URL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldAvatar != "" {
		if err := s.fileStorage.Delete(ctx, oldAvatar); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to delete previous avatar")
		}
	}

	return user, nil
}

func (s *profileService) SearchUsers(ctx context.Context, query string) ([]entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.User{}, nil
	}
	return s.users.Search(ctx, query, userSearchLimit)
}
