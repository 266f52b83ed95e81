package search

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	searchDto "anoa.com/indieplatform/internal/modules/search/dto"
	"anoa.com/indieplatform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBackend matches documents whose JSON contains the query.
type memoryBackend struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{docs: map[string]map[string]json.RawMessage{}}
}

func (m *memoryBackend) Upsert(_ context.Context, index string, docs any) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[index] == nil {
		m.docs[index] = map[string]json.RawMessage{}
	}
	for _, doc := range list {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(doc, &head); err != nil {
			return err
		}
		m.docs[index][head.ID] = doc
	}
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, index, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[index], id)
	return nil
}

func (m *memoryBackend) Query(_ context.Context, index, q string, limit int, hits any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []json.RawMessage
	for _, doc := range m.docs[index] {
		if strings.Contains(strings.ToLower(string(doc)), strings.ToLower(q)) {
			matched = append(matched, doc)
		}
	}
	total := int64(len(matched))
	if len(matched) > limit {
		matched = matched[:limit]
	}
	raw, err := json.Marshal(matched)
	if err != nil {
		return 0, err
	}
	return total, json.Unmarshal(raw, hits)
}

func TestIndexGameStripsMarkup(t *testing.T) {
	backend := newMemoryBackend()
	svc := NewSearchService(backend, nil, nil)
	ctx := context.Background()

	game := &entity.Game{
		Title:          "Moss Garden",
		Slug:           "moss-garden",
		Description:    "<p>Grow <b>moss</b></p><p>relax &amp; unwind</p><script>alert(1)</script>",
		Genres:         []entity.Genre{{Name: "Cozy"}},
		Tags:           []string{"calm"},
		WindowsSupport: true,
		Developer:      entity.User{Username: "mossy"},
	}
	require.NoError(t, svc.IndexGame(ctx, game))

	var doc searchDto.GameDocument
	require.NoError(t, json.Unmarshal(backend.docs[gamesIndex][game.ID.String()], &doc))
	assert.Equal(t, "Grow moss relax & unwind", doc.Description)
	assert.Equal(t, []string{"Cozy"}, doc.Genres)
	assert.Equal(t, []string{entity.PlatformWindows}, doc.Platforms)
	assert.Equal(t, "mossy", doc.Developer)

	res, err := svc.Search(ctx, "moss", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalGames)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "moss-garden", res.Games[0].Slug)
	assert.Empty(t, res.Posts)

	require.NoError(t, svc.DeleteGame(ctx, game.ID))
	res, err = svc.Search(ctx, "moss", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Games)
}

func TestSearchBlankQuery(t *testing.T) {
	svc := NewSearchService(newMemoryBackend(), nil, nil)
	res, err := svc.Search(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Games)
	assert.Empty(t, res.Posts)
}

func TestReindexPushesPublishedContent(t *testing.T) {
	db := testutil.NewDB(t)
	backend := newMemoryBackend()
	svc := NewSearchService(backend, gameRepo.NewGameRepository(db), postRepo.NewPostRepository(db))
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	live := testutil.CreateGame(t, db, dev, testutil.Published())
	testutil.CreateGame(t, db, dev)

	now := time.Now()
	post := &entity.Post{AuthorID: dev.ID, GameID: &live.ID, Title: "Launch day", Slug: "launch-day", Content: "<p>out now</p>", PostType: entity.PostTypeRelease}
	post.SetPublished(true, now)
	require.NoError(t, db.Omit("Author", "Game").Create(post).Error)
	require.NoError(t, db.Omit("Author", "Game").Create(&entity.Post{AuthorID: dev.ID, Title: "Draft", Slug: "draft", Content: "x"}).Error)

	require.NoError(t, svc.Reindex(ctx))
	assert.Len(t, backend.docs[gamesIndex], 1)
	assert.Contains(t, backend.docs[gamesIndex], live.ID.String())
	require.Len(t, backend.docs[postsIndex], 1)

	var doc searchDto.PostDocument
	require.NoError(t, json.Unmarshal(backend.docs[postsIndex][post.ID.String()], &doc))
	assert.Equal(t, "out now", doc.Content)
	assert.Equal(t, live.Title, doc.GameTitle)
	assert.Equal(t, now.Unix(), doc.PublishedAt)
}
