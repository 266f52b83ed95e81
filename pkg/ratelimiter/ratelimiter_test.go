package ratelimiter

import (
	"context"
	"testing"
	"time"

	"anoa.com/indieplatform/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndSetRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	userID := uuid.New()

	ok, err := CheckAndSetRateLimit(ctx, rdb, userID, "comment", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckAndSetRateLimit(ctx, rdb, userID, "comment", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim inside the window must be refused")

	ttl, err := GetRateLimitTTL(ctx, rdb, userID, "comment")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// other actions are independent
	ok, err = CheckAndSetRateLimit(ctx, rdb, userID, "review", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = CheckAndSetRateLimit(ctx, rdb, userID, "comment", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "claim is available again after expiry")
}

func TestClearRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	userID := uuid.New()

	_, err := CheckAndSetRateLimit(ctx, rdb, userID, "review", time.Hour)
	require.NoError(t, err)
	require.NoError(t, ClearRateLimit(ctx, rdb, userID, "review"))

	ok, err := CheckAndSetRateLimit(ctx, rdb, userID, "review", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNilClientDisablesCooldown(t *testing.T) {
	ok, err := CheckAndSetRateLimit(context.Background(), nil, uuid.New(), "comment", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, ClearRateLimit(context.Background(), nil, uuid.New(), "comment"))
}

func TestGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	userID := uuid.New()

	release, err := Guard(ctx, rdb, userID, 5*time.Second, ScopeComment, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = Guard(ctx, rdb, userID, 5*time.Second, ScopeComment, time.Minute)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	// global expired, scoped still held: the global claim must be rolled back
	mr.FastForward(10 * time.Second)
	_, err = Guard(ctx, rdb, userID, 5*time.Second, ScopeComment, time.Minute)
	require.Error(t, err)
	assert.False(t, mr.Exists(key(userID, ScopeGlobal)))

	release()
	assert.False(t, mr.Exists(key(userID, ScopeComment)))
}
