//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"idverify/internal/platform/config"
	"idverify/pkg/testutil/containers"
)

func TestNew_Integration(t *testing.T) {
	rc := containers.NewRedis(t)

	client, err := New(context.Background(), config.RedisConfig{URL: rc.URL, PoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(context.Background()))
}
