package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const (
	stateProcessing = "processing"
	stateDone       = "done"
)

// RedisDeliveryTracker claims deliveries with SET NX so replicas sharing a
// Redis instance process each delivery once.
type RedisDeliveryTracker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisDeliveryTracker creates a tracker on an existing client.
func NewRedisDeliveryTracker(
	client redis.UniversalClient,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisDeliveryTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisDeliveryTracker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("tracker", "redis"),
	}
}

func (r *RedisDeliveryTracker) key(key string) string {
	return r.prefix + "delivery:" + key
}

func (r *RedisDeliveryTracker) claim(ctx context.Context, key string) (bool, error) {
	claimed, err := r.client.SetNX(ctx, r.key(key), stateProcessing, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery: %w", err)
	}
	return claimed, nil
}

// Do implements cache.DeliveryTracker. A key still marked processing yields
// cache.ErrDeliveryInFlight rather than a duplicate.
func (r *RedisDeliveryTracker) Do(ctx context.Context, key string, work cache.Work) (bool, error) {
	claimed, err := r.claim(ctx, key)
	if err != nil {
		return false, err
	}
	if !claimed {
		state, err := r.client.Get(ctx, r.key(key)).Result()
		switch {
		case err == nil && state == stateDone:
			r.logger.Debug("delivery already processed", "key", key)
			return true, nil
		case errors.Is(err, redis.Nil):
			// The claim was released between SETNX and GET.
			if claimed, err = r.claim(ctx, key); err != nil {
				return false, err
			}
		case err != nil:
			return false, fmt.Errorf("read delivery state: %w", err)
		}
		if !claimed {
			r.logger.Debug("delivery claimed by another worker", "key", key)
			return false, cache.ErrDeliveryInFlight
		}
	}

	commit, err := work(ctx)
	// The claim is updated even when the request context is gone.
	bg := context.WithoutCancel(ctx)
	if !commit {
		if delErr := r.client.Del(bg, r.key(key)).Err(); delErr != nil {
			r.logger.Error("failed to release delivery claim", "key", key, "error", delErr)
		}
		return false, err
	}
	if setErr := r.client.Set(bg, r.key(key), stateDone, r.ttl).Err(); setErr != nil {
		r.logger.Error("failed to mark delivery done", "key", key, "error", setErr)
	}
	return false, err
}

var _ cache.DeliveryTracker = (*RedisDeliveryTracker)(nil)
