// Package cache wraps the redis client used for cheap, short-lived
// counters: kudos per rating and the admin pending-moderation badge.
// Every miss or redis error falls back to the database; callers treat
// the cache as advisory.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	kudosTTL   = time.Minute
	pendingTTL = 30 * time.Second

	pendingKey = "moderation:pending"
)

type Counts struct {
	rdb *redis.Client
}

func NewCounts(rdb *redis.Client) *Counts {
	return &Counts{rdb: rdb}
}

// NewRedisClient dials redis and verifies the connection.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func kudosKey(ratingID int64) string {
	return fmt.Sprintf("kudos:rating:%d", ratingID)
}

// GetKudosCount returns the cached count for a rating. The second
// return value is false on a miss or any redis error.
func (c *Counts) GetKudosCount(ctx context.Context, ratingID int64) (int, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, kudosKey(ratingID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Counts) SetKudosCount(ctx context.Context, ratingID int64, count int) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, kudosKey(ratingID), count, kudosTTL)
}

// InvalidateKudos drops the cached count after a toggle so the next
// read reflects the new edge.
func (c *Counts) InvalidateKudos(ctx context.Context, ratingID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, kudosKey(ratingID))
}

func (c *Counts) GetPendingCount(ctx context.Context) (int, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, pendingKey).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Counts) SetPendingCount(ctx context.Context, count int) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, pendingKey, count, pendingTTL)
}

func (c *Counts) InvalidatePending(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, pendingKey)
}
