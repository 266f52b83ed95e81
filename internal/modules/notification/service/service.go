package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/modules/notification/dto"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type NotificationService interface {
	// Notify stores and publishes n. It never fails its caller: errors are logged and
	// counted. Notifications addressed to their own sender are dropped.
	Notify(ctx context.Context, n *entity.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, query commonDto.PageQuery) (*dto.NotificationList, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// Channel is the pub/sub channel carrying userID's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

func (s *notificationService) Notify(ctx context.Context, n *entity.Notification) {
	if n == nil || n.RecipientID == uuid.Nil {
		return
	}
	if n.SenderID != nil && *n.SenderID == n.RecipientID {
		return
	}

	log := logrus.WithFields(logrus.Fields{
		"recipient_id": n.RecipientID,
		"type":         n.Type,
	})

	// detached from the request so a cancelled trigger does not drop the row
	ctx = context.WithoutCancel(ctx)

	if err := s.repo.Create(ctx, n); err != nil {
		metrics.NotificationFailures.WithLabelValues("store").Inc()
		log.WithError(err).Warn("failed to store notification")
		return
	}

	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues("encode").Inc()
		log.WithError(err).Warn("failed to encode notification")
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(n.RecipientID), payload).Err(); err != nil {
		metrics.NotificationFailures.WithLabelValues("publish").Inc()
		log.WithError(err).Warn("failed to publish notification")
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, query commonDto.PageQuery) (*dto.NotificationList, error) {
	page, limit, offset := query.Normalize(20, 100)

	notifications, total, err := s.repo.GetByRecipient(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	return &dto.NotificationList{
		Data: notifications,
		Meta: commonDto.NewMeta(page, limit, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: notification not found", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// Snippet shortens s to at most n runes for notification messages.
func Snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
