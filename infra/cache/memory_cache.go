package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"golang.org/x/sync/singleflight"
)

// MemoryDeliveryTracker tracks committed deliveries in process memory.
// Concurrent calls for the same key share one run through singleflight.
type MemoryDeliveryTracker struct {
	processed sync.Map // key -> expiry time.Time
	inflight  singleflight.Group
	ttl       time.Duration
	now       func() time.Time
}

// NewMemoryDeliveryTracker creates a tracker that forgets keys after ttl.
func NewMemoryDeliveryTracker(ttl time.Duration) *MemoryDeliveryTracker {
	return &MemoryDeliveryTracker{ttl: ttl, now: time.Now}
}

func (t *MemoryDeliveryTracker) seen(key string) bool {
	v, ok := t.processed.Load(key)
	if !ok {
		return false
	}
	if t.ttl > 0 && t.now().After(v.(time.Time)) {
		t.processed.Delete(key)
		return false
	}
	return true
}

// Do implements cache.DeliveryTracker.
func (t *MemoryDeliveryTracker) Do(ctx context.Context, key string, work cache.Work) (bool, error) {
	if t.seen(key) {
		return true, nil
	}
	// Only the caller whose closure runs sets executed; waiters share its error.
	executed := false
	_, err, _ := t.inflight.Do(key, func() (any, error) {
		if t.seen(key) {
			return nil, nil
		}
		executed = true
		commit, err := work(ctx)
		if commit {
			t.processed.Store(key, t.now().Add(t.ttl))
		}
		return nil, err
	})
	return !executed, err
}

var _ cache.DeliveryTracker = (*MemoryDeliveryTracker)(nil)
