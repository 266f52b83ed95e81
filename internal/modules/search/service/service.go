package search

import (
	"context"
	"html"
	"strings"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	searchDto "anoa.com/indieplatform/internal/modules/search/dto"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

type SearchService interface {
	IndexGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
	IndexPost(ctx context.Context, post *entity.Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	Search(ctx context.Context, q string, limit int) (*searchDto.SearchResult, error)
	// Reindex pushes every published game and post to the backend.
	Reindex(ctx context.Context) error
}

type searchService struct {
	backend   Backend
	games     gameRepo.GameRepository
	posts     postRepo.PostRepository
	sanitizer *bluemonday.Policy
}

func NewSearchService(backend Backend, games gameRepo.GameRepository, posts postRepo.PostRepository) SearchService {
	return &searchService{
		backend:   backend,
		games:     games,
		posts:     posts,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// cleanText strips markup from user content so only words reach the index.
func (s *searchService) cleanText(content string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</div>", "</li>"} {
		content = strings.ReplaceAll(content, tag, " ")
	}
	clean := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *searchService) gameDocument(game *entity.Game) searchDto.GameDocument {
	genres := make([]string, 0, len(game.Genres))
	for _, g := range game.Genres {
		genres = append(genres, g.Name)
	}
	platforms := game.Platforms()
	if platforms == nil {
		platforms = []string{}
	}

	return searchDto.GameDocument{
		ID:               game.ID.String(),
		Title:            game.Title,
		Slug:             game.Slug,
		ShortDescription: s.cleanText(game.ShortDescription),
		Description:      s.cleanText(game.Description),
		CoverImage:       game.CoverImage,
		Developer:        game.Developer.Username,
		Genres:           genres,
		Tags:             append([]string{}, game.Tags...),
		Platforms:        platforms,
		DownloadCount:    game.DownloadCount,
		CreatedAt:        game.CreatedAt.Unix(),
	}
}

func (s *searchService) postDocument(post *entity.Post) searchDto.PostDocument {
	doc := searchDto.PostDocument{
		ID:       post.ID.String(),
		Title:    post.Title,
		Slug:     post.Slug,
		Excerpt:  s.cleanText(post.Excerpt),
		Content:  s.cleanText(post.Content),
		PostType: post.PostType,
		Author:   post.Author.Username,
	}
	if post.Game != nil {
		doc.GameTitle = post.Game.Title
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.Unix()
	}
	return doc
}

func (s *searchService) IndexGame(ctx context.Context, game *entity.Game) error {
	return s.backend.Upsert(ctx, gamesIndex, []searchDto.GameDocument{s.gameDocument(game)})
}

func (s *searchService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return s.backend.Delete(ctx, gamesIndex, id.String())
}

func (s *searchService) IndexPost(ctx context.Context, post *entity.Post) error {
	return s.backend.Upsert(ctx, postsIndex, []searchDto.PostDocument{s.postDocument(post)})
}

func (s *searchService) DeletePost(ctx context.Context, id uuid.UUID) error {
	return s.backend.Delete(ctx, postsIndex, id.String())
}

func (s *searchService) Search(ctx context.Context, q string, limit int) (*searchDto.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	res := &searchDto.SearchResult{
		Query: strings.TrimSpace(q),
		Games: []searchDto.GameDocument{},
		Posts: []searchDto.PostDocument{},
	}
	if res.Query == "" {
		return res, nil
	}

	var err error
	if res.TotalGames, err = s.backend.Query(ctx, gamesIndex, res.Query, limit, &res.Games); err != nil {
		return nil, err
	}
	if res.TotalPosts, err = s.backend.Query(ctx, postsIndex, res.Query, limit, &res.Posts); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *searchService) Reindex(ctx context.Context) error {
	games, err := s.games.AllPublished(ctx)
	if err != nil {
		return err
	}
	posts, err := s.posts.AllPublished(ctx)
	if err != nil {
		return err
	}

	if len(games) > 0 {
		docs := make([]searchDto.GameDocument, 0, len(games))
		for i := range games {
			docs = append(docs, s.gameDocument(&games[i]))
		}
		if err := s.backend.Upsert(ctx, gamesIndex, docs); err != nil {
			return err
		}
	}

	if len(posts) > 0 {
		docs := make([]searchDto.PostDocument, 0, len(posts))
		for i := range posts {
			docs = append(docs, s.postDocument(&posts[i]))
		}
		if err := s.backend.Upsert(ctx, postsIndex, docs); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{"games": len(games), "posts": len(posts)}).Info("search index rebuilt")
	return nil
}
