//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is a throwaway redis:7 instance shared by the subtests of one test
type RedisContainer struct {
	Container *tcredis.RedisContainer
	Addr      string
}

// SetupRedisContainer starts the container; call the returned func to terminate it
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	c, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "starting redis container")

	uri, err := c.ConnectionString(ctx)
	require.NoError(t, err, "reading redis address")

	return &RedisContainer{Container: c, Addr: strings.TrimPrefix(uri, "redis://")}, func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminating redis container: %v", err)
		}
	}
}

// CreateTestQueue opens a queue on its own client, closed with the test
func CreateTestQueue(t *testing.T, addr, name string, policy webhook.Policy, opts ...redis.Option) *redis.Queue {
	t.Helper()

	client, err := redis.NewClient(addr, "", 0)
	require.NoError(t, err)

	q, err := redis.NewQueue(client, name, policy, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close(context.Background()) })

	return q
}

// GenerateID returns an id unique across test runs against the same container
func GenerateID(t *testing.T, index int) string {
	t.Helper()
	return fmt.Sprintf("msg-%d-%d", index, time.Now().UnixNano())
}

// GetKeyTTL reads a key's TTL in whole seconds
func GetKeyTTL(t *testing.T, addr, key string) int64 {
	t.Helper()

	var ttl time.Duration
	withRawClient(t, addr, func(c *goredis.Client) {
		var err error
		ttl, err = c.TTL(context.Background(), key).Result()
		require.NoError(t, err)
	})
	return int64(ttl.Seconds())
}

// KeyExists reports whether key is present, bypassing the queue abstraction
func KeyExists(t *testing.T, addr, key string) bool {
	t.Helper()

	var n int64
	withRawClient(t, addr, func(c *goredis.Client) {
		var err error
		n, err = c.Exists(context.Background(), key).Result()
		require.NoError(t, err)
	})
	return n > 0
}

func withRawClient(t *testing.T, addr string, fn func(*goredis.Client)) {
	t.Helper()
	c := goredis.NewClient(&goredis.Options{Addr: addr})
	defer c.Close()
	fn(c)
}
