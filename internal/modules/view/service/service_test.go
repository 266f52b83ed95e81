package view

import (
	"context"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShouldCountDedupsPerViewer(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	svc := NewViewService(rdb, time.Hour)
	ctx := context.Background()
	ref := entity.Ref{Kind: entity.KindGame, ID: uuid.New()}

	assert.True(t, svc.ShouldCount(ctx, ref, "alice"))
	assert.False(t, svc.ShouldCount(ctx, ref, "alice"))
	assert.True(t, svc.ShouldCount(ctx, ref, "bob"))
	assert.True(t, svc.ShouldCount(ctx, entity.Ref{Kind: entity.KindPost, ID: ref.ID}, "alice"))

	mr.FastForward(2 * time.Hour)
	assert.True(t, svc.ShouldCount(ctx, ref, "alice"))
}

func TestShouldCountWithoutRedis(t *testing.T) {
	svc := NewViewService(nil, time.Hour)
	ref := entity.Ref{Kind: entity.KindGame, ID: uuid.New()}

	assert.True(t, svc.ShouldCount(context.Background(), ref, "alice"))
	assert.True(t, svc.ShouldCount(context.Background(), ref, "alice"))
}
