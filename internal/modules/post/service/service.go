package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	postDto "anoa.com/indieplatform/internal/modules/post/dto"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	view "anoa.com/indieplatform/internal/modules/view/service"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/slug"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Indexer keeps the search index in step with published posts.
type Indexer interface {
	IndexPost(ctx context.Context, post *entity.Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
}

type PostService interface {
	ListPosts(ctx context.Context, query postDto.PostQuery) (*commonDto.Paginated[entity.Post], error)
	GetPost(ctx context.Context, viewer *uuid.UUID, viewerKey, slug string) (*entity.Post, error)
	CreatePost(ctx context.Context, userID uuid.UUID, input postDto.CreatePostInput, image *commonDto.UploadFile) (*entity.Post, error)
	UpdatePost(ctx context.Context, userID uuid.UUID, slug string, input postDto.UpdatePostInput, image *commonDto.UploadFile) (*entity.Post, error)
	DeletePost(ctx context.Context, userID uuid.UUID, slug string) error
	SetPublished(ctx context.Context, userID uuid.UUID, slug string, published bool) (*entity.Post, error)
}

type postService struct {
	repo        postRepo.PostRepository
	games       gameRepo.GameRepository
	users       userRepo.UserRepository
	fileStorage storage.FileStorage
	views       view.ViewService
	indexer     Indexer
	now         func() time.Time
}

func NewPostService(repo postRepo.PostRepository, games gameRepo.GameRepository, users userRepo.UserRepository, fileStorage storage.FileStorage, views view.ViewService, indexer Indexer) PostService {
	return &postService{
		repo:        repo,
		games:       games,
		users:       users,
		fileStorage: fileStorage,
		views:       views,
		indexer:     indexer,
		now:         time.Now,
	}
}

const (
	postsPerPage = 10
	postImages   = "posts"
)

func (s *postService) ListPosts(ctx context.Context, query postDto.PostQuery) (*commonDto.Paginated[entity.Post], error) {
	filter := postRepo.PostFilter{Type: query.Type}
	if query.Game != "" {
		game, err := s.games.FindBySlug(ctx, query.Game)
		if err != nil {
			return nil, err
		}
		filter.GameID = &game.ID
	}

	page, limit, offset := query.Normalize(postsPerPage, 50)
	posts, total, err := s.repo.ListPublished(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.Post]{Data: posts, Meta: commonDto.NewMeta(page, limit, total)}, nil
}

// GetPost returns a published post, or a draft to its author, and bumps the view
// counter once per viewer per dedup window.
func (s *postService) GetPost(ctx context.Context, viewer *uuid.UUID, viewerKey, slug string) (*entity.Post, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && (viewer == nil || *viewer != post.AuthorID) {
		return nil, fmt.Errorf("%w: post not found", apperror.ErrNotFound)
	}

	if s.views == nil || s.views.ShouldCount(ctx, post.Reference(), viewerKey) {
		if err := s.repo.IncrementView(ctx, post.ID); err != nil {
			return nil, err
		}
		post.ViewCount++
	}
	return post, nil
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, input postDto.CreatePostInput, image *commonDto.UploadFile) (*entity.Post, error) {
	post := &entity.Post{
		AuthorID: userID,
		Title:    strings.TrimSpace(input.Title),
		Content:  strings.TrimSpace(input.Content),
		Excerpt:  strings.TrimSpace(input.Excerpt),
		PostType: input.PostType,
	}
	if post.Title == "" || post.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperror.ErrInvalidInput)
	}
	if post.PostType == "" {
		post.PostType = entity.PostTypeGeneral
	}
	if post.Excerpt == "" {
		post.Excerpt = notifService.Snippet(post.Content, 280)
	}

	if input.GameID != "" {
		gameID, err := uuid.Parse(input.GameID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid game id", apperror.ErrInvalidInput)
		}
		game, err := s.games.FindByID(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if game.DeveloperID != userID {
			return nil, fmt.Errorf("%w: posts can only be attached to your own games", apperror.ErrForbidden)
		}
		post.GameID = &game.ID
	}

	postSlug, err := s.uniqueSlug(ctx, post.Title)
	if err != nil {
		return nil, err
	}
	post.Slug = postSlug
	post.SetPublished(input.IsPublished, s.now())

	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = &url
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.removeObject(ctx, post.FeaturedImage)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post_id": post.ID, "author_id": userID}).Info("post created")

	created, err := s.repo.FindBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, created)
	return created, nil
}

func (s *postService) findOwned(ctx context.Context, userID uuid.UUID, slug string) (*entity.Post, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, fmt.Errorf("%w: only the author can change this post", apperror.ErrForbidden)
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, userID uuid.UUID, slug string, input postDto.UpdatePostInput, image *commonDto.UploadFile) (*entity.Post, error) {
	post, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if input.IsPinned != nil {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !user.IsModerator() {
			return nil, fmt.Errorf("%w: only moderators can pin posts", apperror.ErrForbidden)
		}
		post.IsPinned = *input.IsPinned
	}

	if input.Title != nil {
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		post.Content = strings.TrimSpace(*input.Content)
	}
	if input.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*input.Excerpt)
	}
	if input.PostType != nil {
		post.PostType = *input.PostType
	}
	if post.Title == "" || post.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperror.ErrInvalidInput)
	}

	var replaced *string
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		replaced = post.FeaturedImage
		post.FeaturedImage = &url
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.removeObject(ctx, replaced)
	s.syncIndex(ctx, post)
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, userID uuid.UUID, slug string) error {
	post, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, post); err != nil {
		return err
	}
	s.removeObject(ctx, post.FeaturedImage)

	if s.indexer != nil {
		if err := s.indexer.DeletePost(ctx, post.ID); err != nil {
			logrus.WithError(err).WithField("post_id", post.ID).Warn("failed to remove post from search")
		}
	}

	logrus.WithFields(logrus.Fields{"post_id": post.ID, "author_id": userID}).Info("post deleted")
	return nil
}

// SetPublished toggles visibility. published_at keeps the first publication time.
func (s *postService) SetPublished(ctx context.Context, userID uuid.UUID, slug string, published bool) (*entity.Post, error) {
	post, err := s.findOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	post.SetPublished(published, s.now())
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, post)
	return post, nil
}

func (s *postService) syncIndex(ctx context.Context, post *entity.Post) {
	if s.indexer == nil {
		return
	}

	var err error
	if post.IsPublished {
		err = s.indexer.IndexPost(ctx, post)
	} else {
		err = s.indexer.DeletePost(ctx, post.ID)
	}
	if err != nil {
		logrus.WithError(err).WithField("post_id", post.ID).Warn("failed to sync search index")
	}
}

func (s *postService) uniqueSlug(ctx context.Context, title string) (string, error) {
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

func (s *postService) upload(ctx context.Context, f *commonDto.UploadFile) (string, error) {
	if s.fileStorage == nil {
		return "", fmt.Errorf("%w: file storage is not configured", apperror.ErrInternal)
	}
	obj, err := s.fileStorage.Upload(ctx, f.Reader, postImages, f.FileName)
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

func (s *postService) removeObject(ctx context.Context, url *string) {
	if url == nil || s.fileStorage == nil {
		return
	}
	if err := s.fileStorage.Delete(ctx, *url); err != nil {
		logrus.WithError(err).WithField("url", *url).Warn("failed to delete stored object")
	}
}
