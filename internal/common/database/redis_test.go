package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semantics-workers/internal/common/config"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Enabled: true, Address: mr.Addr(), KeyPrefix: "mdl:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{Enabled: true})
	assert.Error(t, err)
}

func TestRedisClient_SetGetDel(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.Set(ctx, "tpch", `{"models":[]}`, 0))

	raw, err := mr.Get("mdl:tpch")
	require.NoError(t, err)
	assert.Equal(t, `{"models":[]}`, raw)

	got, err := client.Get(ctx, "tpch")
	require.NoError(t, err)
	assert.Equal(t, `{"models":[]}`, string(got))

	require.NoError(t, client.Del(ctx, "tpch"))
	_, err = client.Get(ctx, "tpch")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisClient_Expiration(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "short", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := client.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisClient_PingFailsWhenServerDown(t *testing.T) {
	client, mr := newTestRedis(t)
	mr.Close()

	assert.Error(t, client.Ping(context.Background()))
}

func TestRedisClient_GetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb, "mdl:")

	mock.ExpectGet("mdl:tpch").SetErr(errors.New("connection reset"))

	_, err := client.Get(context.Background(), "tpch")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_GetNil(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb, "")

	mock.ExpectGet("tpch").RedisNil()

	_, err := client.Get(context.Background(), "tpch")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
