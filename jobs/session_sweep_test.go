package jobs

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/othmanee23/oraxonoptic/testing"
)

func TestSessionSweepRemovesDeadMembers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "session:live", "{}", 0).Err())
	require.NoError(t, client.SAdd(ctx, "user_sessions:7", "live", "dead").Err())
	require.NoError(t, client.SAdd(ctx, "user_sessions:9", "gone").Err())

	job := NewSessionSweepJob(client, slog.Default())
	require.NoError(t, job.Handle(ctx, NewSessionSweepTask()))

	members, err := client.SMembers(ctx, "user_sessions:7").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, members)

	// The fully swept set is dropped entirely.
	exists, err := client.Exists(ctx, "user_sessions:9").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestSessionSweepEmptyKeyspace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	job := NewSessionSweepJob(client, slog.Default())
	assert.NoError(t, job.Handle(context.Background(), NewSessionSweepTask()))
}
