package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis_ConnectsToServer(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = Close() })

	InitRedis(mr.Addr())
	rdb := GetClient()
	require.NotNil(t, rdb)
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInitRedis_AcceptsURL(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = Close() })

	InitRedis("redis://" + mr.Addr() + "/0")
	assert.NotNil(t, GetClient())
}

func TestInitRedis_InvalidURLLeavesClientNil(t *testing.T) {
	t.Cleanup(func() { _ = Close() })
	InitRedis("redis://%zz")
	assert.Nil(t, GetClient())
}

func TestNewClient_UnreachableStillBuilds(t *testing.T) {
	rdb, err := NewClient("127.0.0.1:1")
	require.NoError(t, err)
	defer rdb.Close()
	assert.Error(t, rdb.Ping(context.Background()).Err())
}
