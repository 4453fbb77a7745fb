package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othmanee23/oraxonoptic/internal/platform/cache"
)

func TestNewPingsRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := cache.New(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewReturnsClientWhenPingFails(t *testing.T) {
	client, err := cache.New(context.Background(), "127.0.0.1:1", "")
	assert.Error(t, err)
	assert.NotNil(t, client)
}
