package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/entity"
	commentDto "anoa.com/indieplatform/internal/modules/comment/dto"
	commentRepo "anoa.com/indieplatform/internal/modules/comment/repository"
	like "anoa.com/indieplatform/internal/modules/like/service"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/modules/reference"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type CommentInput struct {
	Target   entity.Ref
	ParentID *uuid.UUID
	Content  string
}

type CommentService interface {
	CreateComment(ctx context.Context, userID uuid.UUID, input CommentInput) (*commentDto.CommentResponse, error)
	ListComments(ctx context.Context, viewer *uuid.UUID, target entity.Ref, query commonDto.PageQuery) (*commonDto.Paginated[commentDto.CommentResponse], error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type commentService struct {
	repo                commentRepo.CommentRepository
	resolver            *reference.Resolver
	likes               like.LikeService
	users               userRepo.UserRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	globalLimit         time.Duration
	commentLimit        time.Duration
}

func NewCommentService(
	repo commentRepo.CommentRepository,
	resolver *reference.Resolver,
	likes like.LikeService,
	users userRepo.UserRepository,
	notificationService notifService.NotificationService,
	redisClient *redis.Client,
	globalLimit, commentLimit time.Duration,
) CommentService {
	return &commentService{
		repo:                repo,
		resolver:            resolver,
		likes:               likes,
		users:               users,
		notificationService: notificationService,
		redisClient:         redisClient,
		globalLimit:         globalLimit,
		commentLimit:        commentLimit,
	}
}

// CreateComment attaches a comment to any visible target. A reply to a reply is
// re-parented onto the thread root so threads stay one level deep.
func (s *commentService) CreateComment(ctx context.Context, userID uuid.UUID, input CommentInput) (*commentDto.CommentResponse, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", apperror.ErrInvalidInput)
	}

	target, err := s.resolver.ResolveVisible(ctx, input.Target, &userID)
	if err != nil {
		return nil, err
	}

	var parent *entity.Comment
	if input.ParentID != nil {
		parent, err = s.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Target() != input.Target {
			return nil, fmt.Errorf("%w: parent comment belongs to another target", apperror.ErrInvalidInput)
		}
	}

	release, err := ratelimiter.Guard(ctx, s.redisClient, userID, s.globalLimit, ratelimiter.ScopeComment, s.commentLimit)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		UserID:     userID,
		TargetType: input.Target.Kind,
		TargetID:   input.Target.ID,
		Content:    content,
		IsPublic:   true,
	}
	if parent != nil {
		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		comment.ParentID = &root
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		release()
		return nil, err
	}

	s.notify(ctx, comment, target, parent)

	logrus.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"target":     target.Ref.String(),
	}).Info("comment created")

	created, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	res := toResponse(*created, nil, nil)
	return &res, nil
}

// notify tells the parent author about a reply, otherwise the target owner.
func (s *commentService) notify(ctx context.Context, comment *entity.Comment, target *reference.Resolved, parent *entity.Comment) {
	if s.notificationService == nil {
		return
	}

	recipient := target.OwnerID
	title := "New comment"
	message := fmt.Sprintf("New comment on your %s: %s", target.Ref.Kind, notifService.Snippet(comment.Content, 50))
	if parent != nil {
		recipient = parent.UserID
		title = "New reply"
		message = "Someone replied to your comment: " + notifService.Snippet(comment.Content, 50)
	}
	if recipient == comment.UserID {
		return
	}

	n := &entity.Notification{
		RecipientID: recipient,
		SenderID:    &comment.UserID,
		Type:        entity.NotificationComment,
		Title:       title,
		Message:     message,
		ActionURL:   s.resolver.Link(target),
	}
	n.SetTarget(comment.Reference())
	s.notificationService.Notify(ctx, n)
}

func (s *commentService) ListComments(ctx context.Context, viewer *uuid.UUID, target entity.Ref, query commonDto.PageQuery) (*commonDto.Paginated[commentDto.CommentResponse], error) {
	if _, err := s.resolver.ResolveVisible(ctx, target, viewer); err != nil {
		return nil, err
	}

	page, limit, offset := query.Normalize(20, 100)
	roots, total, err := s.repo.ListRoots(ctx, target, limit, offset)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, root := range roots {
		ids = append(ids, root.ID)
		for _, reply := range root.Replies {
			ids = append(ids, reply.ID)
		}
	}

	counts, liked, err := s.likes.Counts(ctx, viewer, entity.KindComment, ids)
	if err != nil {
		return nil, err
	}

	data := make([]commentDto.CommentResponse, 0, len(roots))
	for _, root := range roots {
		data = append(data, toResponse(root, counts, liked))
	}

	return &commonDto.Paginated[commentDto.CommentResponse]{
		Data: data,
		Meta: commonDto.NewMeta(page, limit, total),
	}, nil
}

// DeleteComment is allowed to the author and to moderators.
func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsModerator() {
			return fmt.Errorf("%w: only the author or a moderator can delete this comment", apperror.ErrForbidden)
		}
	}

	if err := s.repo.Delete(ctx, comment); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"comment_id": comment.ID, "by": userID}).Info("comment deleted")
	return nil
}

func toResponse(c entity.Comment, counts map[uuid.UUID]int64, liked map[uuid.UUID]bool) commentDto.CommentResponse {
	res := commentDto.CommentResponse{
		ID: c.ID,
		Author: commonDto.AuthorResponse{
			ID:        c.User.ID.String(),
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		},
		Content:   c.Content,
		ParentID:  c.ParentID,
		LikeCount: counts[c.ID],
		Liked:     liked[c.ID],
		Replies:   make([]commentDto.CommentResponse, 0, len(c.Replies)),
		CreatedAt: c.CreatedAt,
	}
	for _, reply := range c.Replies {
		res.Replies = append(res.Replies, toResponse(reply, counts, liked))
	}
	return res
}
