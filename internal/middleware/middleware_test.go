package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, subject string, key string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	echo := func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	}
	r.GET("/private", m.RequireAuth(), echo)
	r.GET("/public", m.OptionalAuth(), echo)
	r.GET("/moderation", m.RequireAuth(), m.RequireModerator(), echo)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRouter(NewAuthMiddleware(userRepo.NewUserRepository(db), secret))
	id := uuid.NewString()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", signed(t, id, "other", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", signed(t, id, secret, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", signed(t, "not-a-uuid", secret, time.Hour)).Code)

	w := do(r, "/private", signed(t, id, secret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Body.String())

	w = do(r, "/private?token="+signed(t, id, secret, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRouter(NewAuthMiddleware(userRepo.NewUserRepository(db), secret))
	id := uuid.NewString()

	w := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/public", signed(t, id, "other", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/public", signed(t, id, secret, time.Hour))
	assert.Equal(t, id, w.Body.String())
}

func TestRequireModerator(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRouter(NewAuthMiddleware(userRepo.NewUserRepository(db), secret))

	player := testutil.CreateUser(t, db, testutil.WithRole(db, entity.RoleUser))
	moderator := testutil.CreateUser(t, db, testutil.WithRole(db, entity.RoleModerator))
	admin := testutil.CreateUser(t, db, testutil.WithRole(db, entity.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, do(r, "/moderation", signed(t, player.ID.String(), secret, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/moderation", signed(t, moderator.ID.String(), secret, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/moderation", signed(t, admin.ID.String(), secret, time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/moderation", signed(t, uuid.NewString(), secret, time.Hour)).Code)
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.GET("/download", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/download", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))

	limiter.Cleanup(0)
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
}
