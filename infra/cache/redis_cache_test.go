package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live Redis when TEST_REDIS_URL is set.
func TestRedisDeliveryTracker(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer func() { _ = client.Close() }()

	tracker := NewRedisDeliveryTracker(client, "test:"+uuid.NewString()+":", time.Minute, nil)
	ctx := context.Background()

	dup, err := tracker.Do(ctx, "released", func(context.Context) (bool, error) {
		return false, errors.New("nothing committed")
	})
	require.Error(t, err)
	assert.False(t, dup)

	dup, err = tracker.Do(ctx, "released", func(context.Context) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = tracker.Do(ctx, "released", func(context.Context) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.True(t, dup)

	inFlight := tracker.key("in-flight")
	require.NoError(t, client.Set(ctx, inFlight, stateProcessing, time.Minute).Err())
	ran := false
	dup, err = tracker.Do(ctx, "in-flight", func(context.Context) (bool, error) {
		ran = true
		return true, nil
	})
	require.ErrorIs(t, err, cache.ErrDeliveryInFlight)
	assert.False(t, dup)
	assert.False(t, ran)

	require.NoError(t, client.Set(ctx, inFlight, stateDone, time.Minute).Err())
	dup, err = tracker.Do(ctx, "in-flight", func(context.Context) (bool, error) {
		ran = true
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, dup)
	assert.False(t, ran)
}
