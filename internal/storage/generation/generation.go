// Package generation issues monotonically increasing match generations per
// blood request. Only the latest generation of a request's matches is
// authoritative for notification and acceptance.
package generation

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	id "bloodlink/pkg/domain"
)

const keyPrefix = "bloodlink:match_gen:"

// MemoryCounter is a process-local counter for single-instance deployments
// and tests.
type MemoryCounter struct {
	mu       sync.Mutex
	counters map[id.RequestID]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counters: make(map[id.RequestID]int64)}
}

func (c *MemoryCounter) Next(_ context.Context, requestID id.RequestID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[requestID]++
	return c.counters[requestID], nil
}

// RedisCounter shares generations across service instances using INCR.
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Next(ctx context.Context, requestID id.RequestID) (int64, error) {
	gen, err := c.client.Incr(ctx, Key(requestID)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment match generation: %w", err)
	}
	return gen, nil
}

// Key returns the Redis key holding the generation for requestID.
func Key(requestID id.RequestID) string {
	return keyPrefix + requestID.String()
}
