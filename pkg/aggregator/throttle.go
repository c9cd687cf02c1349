package aggregator

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// throttle lets a keyed event through at most once per ttl.
type throttle struct {
	cache *ttlcache.Cache[string, struct{}]
}

// newThrottle with a non-positive ttl lets every event through.
func newThrottle(ttl time.Duration) *throttle {
	if ttl <= 0 {
		return &throttle{}
	}
	return &throttle{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, struct{}](ttl),
			ttlcache.WithDisableTouchOnHit[string, struct{}](),
		),
	}
}

func (t *throttle) allow(key string) bool {
	if t.cache == nil {
		return true
	}
	if t.cache.Get(key) != nil {
		return false
	}
	t.cache.Set(key, struct{}{}, ttlcache.DefaultTTL)
	return true
}
