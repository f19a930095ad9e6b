package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"joban-api/logger"
	"joban-api/model"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ICacheClient is the part of the Redis client the board cache needs.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// BoardCache holds read models of boards. Misses and cache failures are
// indistinguishable to callers; the database stays the source of truth.
type BoardCache interface {
	GetBoards(ctx context.Context, ownerID int) ([]*model.BoardSummary, bool)
	SetBoards(ctx context.Context, ownerID int, boards []*model.BoardSummary)
	GetBoard(ctx context.Context, ownerID, boardID int) (*model.Board, bool)
	SetBoard(ctx context.Context, ownerID int, board *model.Board)
	Invalidate(ctx context.Context, ownerID int, boardIDs ...int)
}

func boardsKey(ownerID int) string {
	return fmt.Sprintf("boards:%d", ownerID)
}

func boardKey(ownerID, boardID int) string {
	return fmt.Sprintf("board:%d:%d", ownerID, boardID)
}

// RedisBoardCache is a cache-aside store in Redis. Every call goes through
// a circuit breaker; an open breaker reads as a miss.
type RedisBoardCache struct {
	client ICacheClient
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration
}

func NewRedisBoardCache(client ICacheClient, ttl time.Duration) *RedisBoardCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	st := gobreaker.Settings{
		Name:        "RedisBoardCache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}
	return &RedisBoardCache{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		ttl:    ttl,
	}
}

func (c *RedisBoardCache) get(ctx context.Context, key string, dest interface{}) bool {
	res, err := c.cb.Execute(func() (interface{}, error) {
		val, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	raw, ok := res.(string)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Discarding undecodable cache entry")
		return false
	}
	return true
}

func (c *RedisBoardCache) set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func (c *RedisBoardCache) GetBoards(ctx context.Context, ownerID int) ([]*model.BoardSummary, bool) {
	var boards []*model.BoardSummary
	ok := c.get(ctx, boardsKey(ownerID), &boards)
	return boards, ok
}

func (c *RedisBoardCache) SetBoards(ctx context.Context, ownerID int, boards []*model.BoardSummary) {
	c.set(ctx, boardsKey(ownerID), boards)
}

func (c *RedisBoardCache) GetBoard(ctx context.Context, ownerID, boardID int) (*model.Board, bool) {
	board := &model.Board{}
	if !c.get(ctx, boardKey(ownerID, boardID), board) {
		return nil, false
	}
	board.OwnerID = ownerID
	return board, true
}

func (c *RedisBoardCache) SetBoard(ctx context.Context, ownerID int, board *model.Board) {
	c.set(ctx, boardKey(ownerID, board.ID), board)
}

// Invalidate drops the owner's board list and the given boards.
func (c *RedisBoardCache) Invalidate(ctx context.Context, ownerID int, boardIDs ...int) {
	keys := []string{boardsKey(ownerID)}
	for _, id := range boardIDs {
		keys = append(keys, boardKey(ownerID, id))
	}
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Cache invalidation failed")
	}
}

// NoopBoardCache is used when Redis is disabled.
type NoopBoardCache struct{}

func (NoopBoardCache) GetBoards(context.Context, int) ([]*model.BoardSummary, bool) { return nil, false }
func (NoopBoardCache) SetBoards(context.Context, int, []*model.BoardSummary) {}
func (NoopBoardCache) GetBoard(context.Context, int, int) (*model.Board, bool) { return nil, false }
func (NoopBoardCache) SetBoard(context.Context, int, *model.Board) {}
func (NoopBoardCache) Invalidate(context.Context, int, ...int) {}
