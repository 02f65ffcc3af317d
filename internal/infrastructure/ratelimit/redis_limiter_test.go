package ratelimit_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/ratelimit"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// Requiere Docker: TEST_INTEGRATION=1 go test ./internal/infrastructure/ratelimit/...
func TestRedisLimiter_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("TEST_INTEGRATION no definido")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := ratelimit.Connect(ctx, addr, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	l := ratelimit.NewRedisLimiter(rdb, 2, time.Minute, "invite", logger.Nop())
	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "c1:u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := l.Allow(ctx, "c1:u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	ttl, err := rdb.TTL(ctx, "rl:invite:c1:u1").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
