package generation

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bloodlink/pkg/domain"
)

type counter interface {
	Next(ctx context.Context, requestID id.RequestID) (int64, error)
}

func newRedisCounter(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounter(client), mr
}

func TestCounters(t *testing.T) {
	redisCounter, _ := newRedisCounter(t)
	counters := map[string]counter{
		"memory": NewMemoryCounter(),
		"redis":  redisCounter,
	}

	for name, c := range counters {
		t.Run(name+" increments per request", func(t *testing.T) {
			ctx := context.Background()
			a := id.RequestID(uuid.New())
			b := id.RequestID(uuid.New())

			for want := int64(1); want <= 3; want++ {
				got, err := c.Next(ctx, a)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			got, err := c.Next(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got)
		})

		t.Run(name+" concurrent callers get distinct generations", func(t *testing.T) {
			ctx := context.Background()
			requestID := id.RequestID(uuid.New())
			const goroutines = 50

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				seen = make(map[int64]bool)
			)
			wg.Add(goroutines)
			for i := 0; i < goroutines; i++ {
				go func() {
					defer wg.Done()
					gen, err := c.Next(ctx, requestID)
					assert.NoError(t, err)
					mu.Lock()
					seen[gen] = true
					mu.Unlock()
				}()
			}
			wg.Wait()
			assert.Len(t, seen, goroutines)
		})
	}
}

func TestRedisCounter_KeyLayout(t *testing.T) {
	c, mr := newRedisCounter(t)
	requestID := id.RequestID(uuid.New())

	_, err := c.Next(context.Background(), requestID)
	require.NoError(t, err)

	val, err := mr.Get("bloodlink:match_gen:" + requestID.String())
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestRedisCounter_Unavailable(t *testing.T) {
	c, mr := newRedisCounter(t)
	mr.Close()

	_, err := c.Next(context.Background(), id.RequestID(uuid.New()))
	assert.Error(t, err)
}
