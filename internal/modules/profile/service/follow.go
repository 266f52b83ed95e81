package profile

import (
	"context"
	"fmt"

	"anoa.com/indieplatform/internal/entity"
	profileDto "anoa.com/indieplatform/internal/modules/profile/dto"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/metrics"
	"github.com/google/uuid"
)

// ToggleFollow rejects self-follows before touching storage.
func (s *profileService) ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (*profileDto.FollowResponse, error) {
	if followerID == followingID {
		return nil, fmt.Errorf("%w: you cannot follow yourself", apperror.ErrInvalidOperation)
	}

	target, err := s.users.FindByID(ctx, followingID)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.ToggleFollow(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}

	followers, err := s.repo.CountFollowers(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	action := "removed"
	if added {
		action = "added"
		s.notifyFollow(ctx, followerID, target)
	}
	metrics.TogglesTotal.WithLabelValues("follow", action).Inc()

	return &profileDto.FollowResponse{
		ToggleResponse: commonDto.ToggleResponse{Action: action, Count: followers},
		IsFollowing:    added,
	}, nil
}

func (s *profileService) ToggleFollowByUsername(ctx context.Context, followerID uuid.UUID, username string) (*profileDto.FollowResponse, error) {
	target, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.ToggleFollow(ctx, followerID, target.ID)
}

func (s *profileService) notifyFollow(ctx context.Context, followerID uuid.UUID, target *entity.User) {
	if s.notificationService == nil {
		return
	}

	follower, err := s.users.FindByID(ctx, followerID)
	if err != nil {
		return
	}

	n := &entity.Notification{
		RecipientID: target.ID,
		SenderID:    &followerID,
		Type:        entity.NotificationFollow,
		Title:       "New follower",
		Message:     fmt.Sprintf("%s started following you", follower.Username),
		ActionURL:   "/profiles/" + follower.Username,
	}
	n.SetTarget(follower.Reference())
	s.notificationService.Notify(ctx, n)
}
