//go:build integration

package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/app"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/config"
)

func TestMustBuildContainer_Integration(t *testing.T) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := app.MustBuildContainer(ctx)
	require.NotNil(t, c)

	err := c.Invoke(func(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) {
		require.NotNil(t, cfg)
		require.NotNil(t, pool)
		require.NotNil(t, rdb)
	})
	require.NoError(t, err)
}
