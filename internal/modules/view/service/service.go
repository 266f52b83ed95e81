package view

import (
	"context"
	"fmt"
	"time"

	"anoa.com/indieplatform/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ViewService decides whether a detail view should bump the stored view counter.
type ViewService interface {
	// ShouldCount claims the (ref, viewer) slot for the dedup window. Without Redis, or
	// when Redis fails, every view counts.
	ShouldCount(ctx context.Context, ref entity.Ref, viewer string) bool
}

type viewService struct {
	redisClient *redis.Client
	window      time.Duration
}

func NewViewService(redisClient *redis.Client, window time.Duration) ViewService {
	return &viewService{
		redisClient: redisClient,
		window:      window,
	}
}

func (s *viewService) ShouldCount(ctx context.Context, ref entity.Ref, viewer string) bool {
	if s.redisClient == nil || s.window <= 0 || viewer == "" {
		return true
	}

	key := fmt.Sprintf("%s:user_view:%s:%s", ref.Kind, ref.ID, viewer)
	fresh, err := s.redisClient.SetNX(ctx, key, "viewed", s.window).Result()
	if err != nil {
		logrus.WithError(err).WithField("ref", ref.String()).Warn("view dedup unavailable")
		return true
	}
	return fresh
}
