package service

import (
	"context"
	"joban-api/model"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis creates a redis.Client backed by miniredis.
func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mini.Close() })

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestRedisBoardCache_Miniredis(t *testing.T) {
	ctx := context.Background()
	client, mini := newTestRedis(t)
	cache := NewRedisBoardCache(client, 5*time.Minute)

	_, ok := cache.GetBoard(ctx, 1, 2)
	assert.False(t, ok)

	board := &model.Board{ID: 2, OwnerID: 1, Title: "Sprint", Columns: []*model.Column{
		{ID: 7, BoardID: 2, Title: "Todo", Tasks: []*model.Task{{ID: 9, ColumnID: 7, Title: "write"}}},
	}}
	cache.SetBoard(ctx, 1, board)
	cache.SetBoards(ctx, 1, []*model.BoardSummary{{ID: 2, Title: "Sprint"}})

	assert.True(t, mini.Exists("board:1:2"))
	assert.Equal(t, 5*time.Minute, mini.TTL("board:1:2"))

	got, ok := cache.GetBoard(ctx, 1, 2)
	require.True(t, ok)
	assert.Equal(t, 1, got.OwnerID)
	assert.Equal(t, "write", got.Columns[0].Tasks[0].Title)

	_, ok = cache.GetBoard(ctx, 3, 2)
	assert.False(t, ok, "entries are per owner")

	cache.Invalidate(ctx, 1, 2)
	assert.False(t, mini.Exists("board:1:2"))
	assert.False(t, mini.Exists("boards:1"))
}

func TestRedisRateLimiter_Miniredis(t *testing.T) {
	ctx := context.Background()
	client, mini := newTestRedis(t)

	now := time.UnixMilli(1700000000000)
	l := NewRedisRateLimiter(client, 2)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "bucket is empty")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "buckets are per key")

	// Two per minute refill one token every 30 seconds.
	now = now.Add(31 * time.Second)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mini.Exists("rate_limit:10.0.0.1"))
	assert.Positive(t, mini.TTL("rate_limit:10.0.0.1"))
}
