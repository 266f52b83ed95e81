package service

import (
	"context"
	"fmt"

	"anoa.com/indieplatform/internal/entity"
	likeDto "anoa.com/indieplatform/internal/modules/like/dto"
	likeRepo "anoa.com/indieplatform/internal/modules/like/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/metrics"
	"github.com/google/uuid"
)

type LikeService interface {
	Toggle(ctx context.Context, userID uuid.UUID, ref entity.Ref) (*dto.ToggleResponse, error)
	Status(ctx context.Context, viewer *uuid.UUID, ref entity.Ref) (*likeDto.LikeStatus, error)
	// Counts batches like counts and the viewer's likes for many targets of one kind.
	Counts(ctx context.Context, viewer *uuid.UUID, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]int64, map[uuid.UUID]bool, error)
}

type likeService struct {
	repo                likeRepo.LikeRepository
	resolver            *reference.Resolver
	notificationService notifService.NotificationService
}

func NewLikeService(repo likeRepo.LikeRepository, resolver *reference.Resolver, notificationService notifService.NotificationService) LikeService {
	return &likeService{
		repo:                repo,
		resolver:            resolver,
		notificationService: notificationService,
	}
}

func (s *likeService) Toggle(ctx context.Context, userID uuid.UUID, ref entity.Ref) (*dto.ToggleResponse, error) {
	target, err := s.resolver.ResolveVisible(ctx, ref, &userID)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.Toggle(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, ref)
	if err != nil {
		return nil, err
	}

	action := "removed"
	if added {
		action = "added"
		s.notifyOwner(ctx, userID, target)
	}
	metrics.TogglesTotal.WithLabelValues("like", action).Inc()

	return &dto.ToggleResponse{Action: action, Count: count}, nil
}

func (s *likeService) notifyOwner(ctx context.Context, userID uuid.UUID, target *reference.Resolved) {
	if s.notificationService == nil || target.OwnerID == userID {
		return
	}

	n := &entity.Notification{
		RecipientID: target.OwnerID,
		SenderID:    &userID,
		Type:        entity.NotificationLike,
		Title:       "New like",
		Message:     fmt.Sprintf("Someone liked your %s: %s", target.Ref.Kind, notifService.Snippet(target.Label, 40)),
		ActionURL:   s.resolver.Link(target),
	}
	n.SetTarget(target.Ref)
	s.notificationService.Notify(ctx, n)
}

func (s *likeService) Status(ctx context.Context, viewer *uuid.UUID, ref entity.Ref) (*likeDto.LikeStatus, error) {
	if _, err := s.resolver.ResolveVisible(ctx, ref, viewer); err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, ref)
	if err != nil {
		return nil, err
	}

	status := &likeDto.LikeStatus{Count: count}
	if viewer != nil {
		if status.Liked, err = s.repo.Exists(ctx, *viewer, ref); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func (s *likeService) Counts(ctx context.Context, viewer *uuid.UUID, kind entity.Kind, ids []uuid.UUID) (map[uuid.UUID]int64, map[uuid.UUID]bool, error) {
	counts, err := s.repo.CountByTargets(ctx, kind, ids)
	if err != nil {
		return nil, nil, err
	}

	liked := map[uuid.UUID]bool{}
	if viewer != nil {
		if liked, err = s.repo.LikedTargets(ctx, *viewer, kind, ids); err != nil {
			return nil, nil, err
		}
	}
	return counts, liked, nil
}
