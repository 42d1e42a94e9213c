//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"raiap/internal/domain"
	"raiap/internal/store"
)

func TestRedisStreams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := store.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	suite.Run(t, &StreamStoreSuite{open: func(t *testing.T) domain.StreamStore {
		require.NoError(t, client.FlushAll(context.Background()).Err())
		return store.NewRedisStreams(client, quietLogger())
	}})
}
