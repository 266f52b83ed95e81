package search

import (
	"context"
	"encoding/json"

	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
)

const (
	gamesIndex = "games"
	postsIndex = "posts"
)

// Backend is the document store behind search.
type Backend interface {
	Upsert(ctx context.Context, index string, docs any) error
	Delete(ctx context.Context, index, id string) error
	// Query decodes up to limit hits into hits and returns the estimated total.
	Query(ctx context.Context, index, q string, limit int, hits any) (int64, error)
}

type meiliBackend struct {
	client meilisearch.ServiceManager
}

func NewMeiliBackend(client meilisearch.ServiceManager) Backend {
	b := &meiliBackend{client: client}
	b.initIndexes()
	return b
}

func (b *meiliBackend) initIndexes() {
	settings := map[string]struct {
		filterable []string
		sortable   []string
	}{
		gamesIndex: {filterable: []string{"genres", "platforms"}, sortable: []string{"created_at", "download_count"}},
		postsIndex: {filterable: []string{"post_type"}, sortable: []string{"published_at"}},
	}

	for uid, s := range settings {
		filterable := make([]any, len(s.filterable))
		for i, v := range s.filterable {
			filterable[i] = v
		}
		if _, err := b.client.Index(uid).UpdateFilterableAttributes(&filterable); err != nil {
			logrus.WithError(err).WithField("index", uid).Warn("failed to update filterable attributes")
		}
		sortable := s.sortable
		if _, err := b.client.Index(uid).UpdateSortableAttributes(&sortable); err != nil {
			logrus.WithError(err).WithField("index", uid).Warn("failed to update sortable attributes")
		}
	}

	logrus.Info("meilisearch indexes initialized")
}

func (b *meiliBackend) Upsert(_ context.Context, index string, docs any) error {
	task, err := b.client.Index(index).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"index": index, "task_uid": task.TaskUID}).Debug("documents queued")
	return nil
}

func (b *meiliBackend) Delete(_ context.Context, index, id string) error {
	_, err := b.client.Index(index).DeleteDocument(id)
	return err
}

type rawResult struct {
	Hits               json.RawMessage `json:"hits"`
	EstimatedTotalHits int64           `json:"estimatedTotalHits"`
}

func (b *meiliBackend) Query(_ context.Context, index, q string, limit int, hits any) (int64, error) {
	raw, err := b.client.Index(index).SearchRaw(q, &meilisearch.SearchRequest{Limit: int64(limit)})
	if err != nil {
		return 0, err
	}

	var res rawResult
	if err := json.Unmarshal(*raw, &res); err != nil {
		return 0, err
	}
	if len(res.Hits) > 0 {
		if err := json.Unmarshal(res.Hits, hits); err != nil {
			return 0, err
		}
	}
	return res.EstimatedTotalHits, nil
}

func strPtr(s string) *string {
	return &s
}
