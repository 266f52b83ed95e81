package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/config"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBackend struct{}

func (nopBackend) Upsert(context.Context, string, any) error { return nil }
func (nopBackend) Delete(context.Context, string, string) error { return nil }
func (nopBackend) Query(context.Context, string, string, int, any) (int64, error) {
	return 0, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	files, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:          "test",
		Port:            "0",
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		StorageDriver:   "local",
		RateLimitGlobal: time.Second,
		DownloadRate:    1,
		DownloadBurst:   1,
		ViewDedupWindow: time.Hour,
		ReindexSchedule: "@daily",
	}

	srv, err := NewServer(cfg, Dependencies{DB: db, Redis: rdb, Storage: files, SearchBackend: nopBackend{}})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/metrics", "", nil).Code)
	assert.ElementsMatch(t, []string{"search-reindex", "download-limiter-cleanup"}, srv.scheduler.Names())
}

func TestRouteAccess(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "pixelsmith",
		"email":    "pixel@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.AccessToken)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/games", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/me/profile", auth.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/me/profile", "", nil).Code)

	// Moderation routes reject regular members
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodGet, "/api/reports", auth.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodPost, "/api/genres", auth.AccessToken, map[string]string{"name": "Roguelike"}).Code)
}
