package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CheckAndSetRateLimit claims the cooldown slot for (user, action). It returns false while
// a previous claim is still live. A nil client disables the cooldown.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(userID, action)).Result()
}

// ClearRateLimit releases the slot, used when the guarded action failed.
func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(userID, action)).Result()
	return err
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

const (
	ScopeGlobal  = "global"
	ScopeComment = "comment"
	ScopeReview  = "review"
)

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Guard claims the global cooldown and then the scoped one, releasing the global slot
// when the scoped claim fails. The returned release func undoes both claims and is meant
// for callers whose guarded action failed afterwards.
func Guard(ctx context.Context, rdb *redis.Client, userID uuid.UUID, global time.Duration, scope string, scoped time.Duration) (func(), error) {
	allowed, err := CheckAndSetRateLimit(ctx, rdb, userID, ScopeGlobal, global)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, rdb, userID, ScopeGlobal)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	allowed, err = CheckAndSetRateLimit(ctx, rdb, userID, scope, scoped)
	if err != nil {
		_ = ClearRateLimit(ctx, rdb, userID, ScopeGlobal)
		return nil, err
	}
	if !allowed {
		_ = ClearRateLimit(ctx, rdb, userID, ScopeGlobal)
		ttl, _ := GetRateLimitTTL(ctx, rdb, userID, scope)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("please wait %.0f seconds before another %s", ttl.Seconds(), scope),
			RetryAfter: ttl,
		}
	}

	return func() {
		_ = ClearRateLimit(ctx, rdb, userID, ScopeGlobal)
		_ = ClearRateLimit(ctx, rdb, userID, scope)
	}, nil
}
