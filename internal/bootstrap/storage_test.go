package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vista-ui/config"
	"github.com/target/vista-ui/internal/adapters/memory"
	"github.com/target/vista-ui/internal/testutil"
)

func newMiniredisInfra(t *testing.T) (*miniredis.Miniredis, *Infrastructure) {
	t.Helper()
	mr, client := testutil.SetupMiniRedis(t)
	return mr, &Infrastructure{Redis: client}
}

func TestNewStorageBackend_Memory(t *testing.T) {
	backend, err := NewStorageBackend(config.StorageConfig{Driver: config.StorageDriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.StorageProvider{}, backend)
}

func TestNewStorageBackend_Redis(t *testing.T) {
	mr, infra := newMiniredisInfra(t)
	ctx := context.Background()

	backend, err := NewStorageBackend(config.StorageConfig{
		Driver:    config.StorageDriverRedis,
		KeyPrefix: "test:",
		TTL:       time.Hour,
	}, infra)
	require.NoError(t, err)

	require.NoError(t, backend.For("c1").Set(ctx, "token", "abc"))
	got, err := mr.Get("test:{c1}:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, time.Hour, mr.TTL("test:{c1}:token"))

	dump, err := backend.Dump(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "abc"}, dump)
}

func TestNewStorageBackend_MissingConnection(t *testing.T) {
	_, err := NewStorageBackend(config.StorageConfig{Driver: config.StorageDriverRedis}, &Infrastructure{})
	assert.Error(t, err)

	_, err = NewStorageBackend(config.StorageConfig{Driver: config.StorageDriverPostgres}, nil)
	assert.Error(t, err)

	_, err = NewStorageBackend(config.StorageConfig{Driver: "sqlite"}, nil)
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestInfrastructure_HealthCheck(t *testing.T) {
	mr, infra := newMiniredisInfra(t)

	require.NoError(t, infra.HealthCheck(context.Background()))

	mr.Close()
	assert.ErrorContains(t, infra.HealthCheck(context.Background()), "ping redis")
	assert.NoError(t, (&Infrastructure{}).HealthCheck(context.Background()))
}
