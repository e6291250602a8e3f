package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

const quoteKeyPrefix = "quote:"

// QuoteCacheService keeps recent source payloads so repeating a lane
// within the TTL does not hit the engines again. The in-process layer
// always runs; Redis is an optional second layer shared across gateway
// replicas. Entries are stored as JSON in both layers so a Redis hit
// and a local hit decode identically.
type QuoteCacheService struct {
	local *cache.Cache
	redis *RedisService // nil when Redis is not configured
	ttl   time.Duration
}

// NewQuoteCacheService creates the cache. redis may be nil.
func NewQuoteCacheService(ttl, cleanup time.Duration, redis *RedisService) *QuoteCacheService {
	c := cache.New(ttl, cleanup)

	c.OnEvicted(func(key string, value interface{}) {
		log.Printf("🗑️  [QUOTE-CACHE] Evicted %s", key)
	})

	return &QuoteCacheService{
		local: c,
		redis: redis,
		ttl:   ttl,
	}
}

// Key builds the cache key for one source on one lane. The spot source
// appends the shipment date because the same lane on a different date
// is a different quote window.
func (s *QuoteCacheService) Key(source models.SourceKey, lane models.LaneInfo, shipDate string) string {
	key := fmt.Sprintf("%s%s|%s", quoteKeyPrefix, source, lane.Signature())
	if source == models.SourceSpotAnalysis && shipDate != "" {
		key += "|" + shipDate
	}
	return key
}

// Get loads a cached payload into out. Returns false on a miss in both
// layers. A Redis hit refills the local layer.
func (s *QuoteCacheService) Get(ctx context.Context, key string, out interface{}) bool {
	if value, found := s.local.Get(key); found {
		if data, ok := value.([]byte); ok {
			if err := json.Unmarshal(data, out); err == nil {
				return true
			}
		}
	}

	if s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false
	}
	s.local.Set(key, []byte(data), cache.DefaultExpiration)
	return true
}

// Set stores a payload in both layers. Redis failures only cost the
// shared layer; they are logged and swallowed.
func (s *QuoteCacheService) Set(ctx context.Context, key string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ [QUOTE-CACHE] Failed to marshal payload for %s: %v", key, err)
		return
	}
	s.local.Set(key, data, cache.DefaultExpiration)

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, data, s.ttl); err != nil {
			log.Printf("⚠️ [QUOTE-CACHE] Redis set failed for %s: %v", key, err)
		}
	}
}

// Flush drops every cached quote in both layers. Called on store reset.
func (s *QuoteCacheService) Flush(ctx context.Context) {
	s.local.Flush()
	if s.redis != nil {
		if err := s.redis.DeleteByPattern(ctx, quoteKeyPrefix+"*"); err != nil {
			log.Printf("⚠️ [QUOTE-CACHE] Redis flush failed: %v", err)
		}
	}
}

// ItemCount reports how many quotes sit in the local layer. Exposed as
// a gauge.
func (s *QuoteCacheService) ItemCount() int {
	return s.local.ItemCount()
}
