package leader

import (
	"context"
	"errors"
	"time"

	"auction-board/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const releaseScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("DEL", KEYS[1])
    else
        return 0
    end
`

const extendScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("PEXPIRE", KEYS[1], ARGV[2])
    else
        return 0
    end
`

// RedisLeaderElection holds a lease on key. Only the instance whose ID is
// stored under key is the leader.
type RedisLeaderElection struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisLeaderElection(client *redis.Client, key string, ttl time.Duration, log logger.Logger) *RedisLeaderElection {
	return &RedisLeaderElection{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    log,
	}
}

// BecomeLeader tries to take the lease. On success the lease is extended in
// the background, and the returned context is cancelled when an extension
// fails or ctx ends.
func (r *RedisLeaderElection) BecomeLeader(ctx context.Context, instanceID string) (context.Context, bool, error) {
	result, err := r.client.SetNX(ctx, r.key, instanceID, r.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !result {
		return nil, false, nil
	}

	leaderCtx, cancel := context.WithCancel(ctx)
	go r.maintainLeadership(leaderCtx, cancel, instanceID)

	return leaderCtx, true, nil
}

func (r *RedisLeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	currentLeader, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return currentLeader == instanceID, nil
}

// ReleaseLeadership drops the lease if instanceID still holds it.
func (r *RedisLeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return r.client.Eval(ctx, releaseScript, []string{r.key}, instanceID).Err()
}

func (r *RedisLeaderElection) maintainLeadership(ctx context.Context, cancel context.CancelFunc, instanceID string) {
	defer cancel()

	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		extendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		extended, err := r.client.Eval(extendCtx, extendScript, []string{r.key},
			instanceID, r.ttl.Milliseconds()).Int64()
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.log.Error("Failed to extend leadership", "key", r.key, "instance_id", instanceID, "error", err)
			return
		}
		if extended == 0 {
			r.log.Warn("Leadership lost to another instance", "key", r.key, "instance_id", instanceID)
			return
		}
	}
}
