package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/dronedelivery/config"
	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(config.RedisConfig{Addr: mr.Addr()}, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_Drones(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	drones, err := c.GetDrones(ctx)
	require.NoError(t, err)
	assert.Nil(t, drones)

	fleet := []domain.Drone{
		{ID: 1, NickName: "Speedy", Model: "DJI", Status: domain.DroneStatusParked, OperationStatus: domain.OperationStatusOperational},
		{ID: 2, NickName: "Buzz", Model: "DJI", Status: domain.DroneStatusInFlightToEndAddress},
	}
	require.NoError(t, c.SetDrones(ctx, fleet))

	drones, err = c.GetDrones(ctx)
	require.NoError(t, err)
	assert.Equal(t, fleet, drones)

	mr.FastForward(2 * time.Minute)
	drones, err = c.GetDrones(ctx)
	require.NoError(t, err)
	assert.Nil(t, drones)

	require.NoError(t, c.SetDrones(ctx, fleet))
	require.NoError(t, c.InvalidateDrones(ctx))
	assert.False(t, mr.Exists("cache:drones"))
}

func TestRedisCache_GetDronesCorrupt(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("cache:drones", "{not json"))

	_, err := c.GetDrones(context.Background())
	assert.Error(t, err)
}

func TestRedisCache_DroneLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	token, err := c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists("lock:drone:1"))

	held, err := c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, held)

	other, err := c.AcquireDroneLock(ctx, 2, 30*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, other)
	assert.NotEqual(t, token, other)

	require.NoError(t, c.ReleaseDroneLock(ctx, 1, token))
	assert.False(t, mr.Exists("lock:drone:1"))
	token, err = c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists("lock:drone:2"))
}

func TestRedisCache_DroneLock_ExpiredOwnerCannotReleaseNewHolder(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	first, err := c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	mr.FastForward(31 * time.Second)

	second, err := c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, second)

	// The slow first attempt finishes and releases after its lock expired.
	require.NoError(t, c.ReleaseDroneLock(ctx, 1, first))

	third, err := c.AcquireDroneLock(ctx, 1, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, third)

	stored, err := mr.Get("lock:drone:1")
	require.NoError(t, err)
	assert.Equal(t, second, stored)

	require.NoError(t, c.ReleaseDroneLock(ctx, 1, second))
	assert.False(t, mr.Exists("lock:drone:1"))
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.AcquireDroneLock(context.Background(), 1, time.Second)
	assert.Error(t, err)
}
