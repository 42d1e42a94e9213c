//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"raiap/internal/domain"
	"raiap/internal/store"
)

func TestPostgresStreams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("raiap"),
		tcpostgres.WithUsername("raiap"),
		tcpostgres.WithPassword("raiap"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := store.OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pg := store.NewPostgresStreams(db, quietLogger())
	require.NoError(t, pg.Migrate(ctx))

	suite.Run(t, &StreamStoreSuite{open: func(t *testing.T) domain.StreamStore {
		_, err := db.ExecContext(context.Background(), "TRUNCATE anchors")
		require.NoError(t, err)
		return pg
	}})
}
