package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	reviewDto "anoa.com/indieplatform/internal/modules/review/dto"
	reviewRepo "anoa.com/indieplatform/internal/modules/review/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID uuid.UUID, gameSlug string, input reviewDto.CreateReviewInput) (*entity.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, input reviewDto.UpdateReviewInput) (*entity.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
	GetReview(ctx context.Context, viewer *uuid.UUID, reviewID uuid.UUID) (*entity.Review, error)
	ListGameReviews(ctx context.Context, gameSlug string, query commonDto.PageQuery) (*reviewDto.ReviewList, error)
	RateGame(ctx context.Context, userID uuid.UUID, gameSlug string, score int) (*reviewDto.RatingResponse, error)
}

type reviewService struct {
	repo                reviewRepo.ReviewRepository
	games               gameRepo.GameRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	globalLimit         time.Duration
	reviewLimit         time.Duration
}

func NewReviewService(repo reviewRepo.ReviewRepository, games gameRepo.GameRepository, notificationService notifService.NotificationService, redisClient *redis.Client, globalLimit, reviewLimit time.Duration) ReviewService {
	return &reviewService{
		repo:                repo,
		games:               games,
		notificationService: notificationService,
		redisClient:         redisClient,
		globalLimit:         globalLimit,
		reviewLimit:         reviewLimit,
	}
}

func (s *reviewService) publishedGame(ctx context.Context, slug string) (*entity.Game, error) {
	game, err := s.games.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !game.IsPublished {
		return nil, fmt.Errorf("%w: game not found", apperror.ErrNotFound)
	}
	return game, nil
}

// CreateReview rejects a second review of the same game with ErrConflict; edits go
// through UpdateReview.
func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, gameSlug string, input reviewDto.CreateReviewInput) (*entity.Review, error) {
	game, err := s.publishedGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, game.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you already reviewed this game", apperror.ErrConflict)
	}

	release, err := ratelimiter.Guard(ctx, s.redisClient, userID, s.globalLimit, ratelimiter.ScopeReview, s.reviewLimit)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		UserID:      userID,
		GameID:      game.ID,
		Title:       strings.TrimSpace(input.Title),
		Content:     strings.TrimSpace(input.Content),
		Rating:      input.Rating,
		Recommended: input.Recommended,
		IsPublic:    input.IsPublic == nil || *input.IsPublic,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		release()
		return nil, err
	}

	if review.IsPublic {
		s.notifyDeveloper(ctx, review, game)
	}

	logrus.WithFields(logrus.Fields{"review_id": review.ID, "game_id": game.ID}).Info("review created")
	return review, nil
}

func (s *reviewService) notifyDeveloper(ctx context.Context, review *entity.Review, game *entity.Game) {
	if s.notificationService == nil || game.DeveloperID == review.UserID {
		return
	}

	n := &entity.Notification{
		RecipientID: game.DeveloperID,
		SenderID:    &review.UserID,
		Type:        entity.NotificationReview,
		Title:       "New review",
		Message:     fmt.Sprintf("%s received a %d-star review: %s", game.Title, review.Rating, notifService.Snippet(review.Title, 40)),
		ActionURL:   "/games/" + game.Slug,
	}
	n.SetTarget(review.Reference())
	s.notificationService.Notify(ctx, n)
}

func (s *reviewService) owned(ctx context.Context, userID, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, fmt.Errorf("%w: only the author can change this review", apperror.ErrForbidden)
	}
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, input reviewDto.UpdateReviewInput) (*entity.Review, error) {
	review, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		review.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		review.Content = strings.TrimSpace(*input.Content)
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Recommended != nil {
		review.Recommended = *input.Recommended
	}
	if input.IsPublic != nil {
		review.IsPublic = *input.IsPublic
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, review)
}

func (s *reviewService) GetReview(ctx context.Context, viewer *uuid.UUID, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsPublic && (viewer == nil || *viewer != review.UserID) {
		return nil, fmt.Errorf("%w: review not found", apperror.ErrNotFound)
	}
	return review, nil
}

func (s *reviewService) ListGameReviews(ctx context.Context, gameSlug string, query commonDto.PageQuery) (*reviewDto.ReviewList, error) {
	game, err := s.publishedGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	page, limit, offset := query.Normalize(10, 50)
	reviews, total, err := s.repo.ListPublicByGame(ctx, game.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &reviewDto.ReviewList{Data: reviews, Meta: commonDto.NewMeta(page, limit, total)}, nil
}

// RateGame upserts the caller's score; rating twice replaces the first score.
func (s *reviewService) RateGame(ctx context.Context, userID uuid.UUID, gameSlug string, score int) (*reviewDto.RatingResponse, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperror.ErrInvalidInput)
	}

	game, err := s.publishedGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	rating := &entity.GameRating{UserID: userID, GameID: game.ID, Rating: score}
	if err := s.repo.UpsertRating(ctx, rating); err != nil {
		return nil, err
	}

	avg, count, err := s.repo.RatingSummary(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	return &reviewDto.RatingResponse{Rating: *rating, Average: avg, Count: count}, nil
}
