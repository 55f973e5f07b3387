package redisgeo

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"
	"friends-server/utils/logger"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *PositionIndex {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := Connect(ctx, addr, "", 0, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewPositionIndex(client)
}

func TestPositionIndex(t *testing.T) {
	index := startRedis(t)
	ctx := context.Background()

	_, err := index.Get(ctx, "nobody@b.dk")
	require.True(t, stderrors.Is(err, errors.ErrNotFound))

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = index.Upsert(ctx, models.Position{Email: "pp@b.dk", Location: models.NewPoint(12.50, 55.60), LastUpdated: stamp})
	require.NoError(t, err)
	_, err = index.Upsert(ctx, models.Position{Email: "pp@b.dk", Location: models.NewPoint(12.5790, 55.6780), LastUpdated: stamp.Add(time.Minute)})
	require.NoError(t, err)
	_, err = index.Upsert(ctx, models.Position{Email: "dd@b.dk", Location: models.NewPoint(12.5700, 55.6765), LastUpdated: stamp})
	require.NoError(t, err)
	_, err = index.Upsert(ctx, models.Position{Email: "me@b.dk", Location: models.NewPoint(12.5683, 55.6761), LastUpdated: stamp})
	require.NoError(t, err)

	pos, err := index.Get(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.InDelta(t, 12.5790, pos.Location.Lon(), 1e-4)
	require.InDelta(t, 55.6780, pos.Location.Lat(), 1e-4)
	require.True(t, pos.LastUpdated.Equal(stamp.Add(time.Minute)))

	hits, err := index.Nearby(ctx, "me@b.dk", models.NewPoint(12.5683, 55.6761), 5000)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "dd@b.dk", hits[0].Email)
	require.Equal(t, "pp@b.dk", hits[1].Email)
	require.Less(t, hits[0].Distance, hits[1].Distance)

	hits, err = index.Nearby(ctx, "me@b.dk", models.NewPoint(12.5683, 55.6761), 50)
	require.NoError(t, err)
	require.Empty(t, hits)
}
