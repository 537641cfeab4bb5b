package pairlock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

const (
	lockTTL        = 5 * time.Second
	lockRetryEvery = 50 * time.Millisecond
)

// Redis serializes pair keys across processes using redislock. Use it when
// more than one instance serves chat traffic.
type Redis struct {
	client *redislock.Client
}

func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{client: redislock.New(rdb)}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := r.client.Obtain(ctx, "pairlock:"+key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryEvery),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, dErrors.New(dErrors.CodeUnavailable, "conversation is being created, retry shortly")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to obtain pair lock")
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, nil
}
