package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/othmanee23/oraxonoptic/internal/jobs"
)

const (
	sessionKeyPrefix  = "session:"
	revocationPattern = "user_sessions:*"
)

// SessionSweepJob removes session IDs from the per-user revocation sets
// once the underlying session key has expired. Without the sweep the sets
// grow with every login and Logout-all walks dead members.
type SessionSweepJob struct {
	client  *redis.Client
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSessionSweepJob constructs a SessionSweepJob instance.
func NewSessionSweepJob(client *redis.Client, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{client: client, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// Handle processes TaskSessionSweep tasks.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("session_sweep")
	var cursor uint64
	swept := 0
	for {
		keys, next, err := j.client.Scan(ctx, cursor, revocationPattern, 100).Result()
		if err != nil {
			return tracker.End(err)
		}
		for _, key := range keys {
			removed, err := j.sweepSet(ctx, key)
			if err != nil {
				return tracker.End(err)
			}
			swept += removed
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if swept > 0 {
		j.logger.Info("session sweep", slog.Int("removed", swept))
	}
	return tracker.End(nil)
}

func (j *SessionSweepJob) sweepSet(ctx context.Context, key string) (int, error) {
	members, err := j.client.SMembers(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, jti := range members {
		exists, err := j.client.Exists(ctx, sessionKeyPrefix+jti).Result()
		if err != nil {
			return removed, err
		}
		if exists == 0 {
			if err := j.client.SRem(ctx, key, jti).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if len(members) == removed && removed > 0 {
		_ = j.client.Del(ctx, key).Err()
	}
	return removed, nil
}
