package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/deskgate/server/internal/shared/errors"
	"github.com/deskgate/server/internal/shared/metrics"
)

// ErrInvalidTTL rejects writes with a non-positive freshness window.
var ErrInvalidTTL = fmt.Errorf("%w: ttl must be positive", apperrors.ErrInvalidArgument)

// durableEnvelope is the JSON stored in the durable tier. The expiry
// travels inside the payload as epoch milliseconds so entries written
// by a previous process remain verifiable after a restart, independent
// of the Redis key TTL.
type durableEnvelope struct {
	Value  json.RawMessage `json:"value"`
	Expiry int64           `json:"expiry"`
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Config holds store configuration.
type Config struct {
	// DurablePrefix namespaces durable keys so Clear can never touch
	// foreign data in a shared Redis.
	DurablePrefix string
	// CleanupInterval is the janitor sweep period. Zero disables the
	// janitor; Cleanup can still be called explicitly.
	CleanupInterval time.Duration
}

// Store is the tiered cache: a volatile in-process tier backed by an
// optional durable Redis tier. Values are stored JSON-encoded in both
// tiers, so every read decodes a fresh copy and callers can never
// mutate a cached value in place.
//
// The durable tier is best-effort: its failures are logged, counted,
// and absorbed, never surfaced to callers.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	durable redis.UniversalClient
	prefix  string
	policy  *TierPolicy
	logger  *zap.Logger
	metrics *metrics.Metrics

	closeOnce   sync.Once
	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// NewStore creates a store. durable may be nil for a volatile-only
// store, metrics may be nil, and a nil policy gets the default rules.
func NewStore(cfg Config, durable redis.UniversalClient, policy *TierPolicy, logger *zap.Logger, m *metrics.Metrics) *Store {
	if policy == nil {
		policy = NewTierPolicy(DefaultTierRules())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.DurablePrefix
	if prefix == "" {
		prefix = "deskgate_cache_"
	}

	s := &Store{
		entries: make(map[string]entry),
		durable: durable,
		prefix:  prefix,
		policy:  policy,
		logger:  logger,
		metrics: m,
	}

	if cfg.CleanupInterval > 0 {
		s.stopJanitor = make(chan struct{})
		s.janitorDone = make(chan struct{})
		go s.runJanitor(cfg.CleanupInterval)
	}

	return s
}

// Set stores a value in the volatile tier and, for durable-eligible
// keys, mirrors it to the durable tier under the same absolute expiry.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode value for %q: %v", apperrors.ErrInvalidArgument, key, err)
	}

	expiresAt := time.Now().Add(ttl)

	s.mu.Lock()
	s.entries[key] = entry{data: data, expiresAt: expiresAt}
	size := len(s.entries)
	s.mu.Unlock()
	s.setEntriesGauge(size)

	if s.durable != nil && s.policy.Durable(key) {
		s.durableSet(ctx, key, data, expiresAt)
	}

	return nil
}

// Get reads a value into dest. A miss, an expired entry, and a durable
// tier failure all return (false, nil); the error is reserved for an
// incompatible dest. A durable hit repopulates the volatile tier with
// the entry's original expiry.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		if time.Now().Before(e.expiresAt) {
			s.recordHit(key, "memory")
			return s.decode(key, e.data, dest)
		}
		s.evictExpired(key)
	}

	if s.durable != nil && s.policy.Durable(key) {
		if data, expiresAt, found := s.durableGet(ctx, key); found {
			s.mu.Lock()
			s.entries[key] = entry{data: data, expiresAt: expiresAt}
			size := len(s.entries)
			s.mu.Unlock()
			s.setEntriesGauge(size)
			s.recordHit(key, "durable")
			return s.decode(key, data, dest)
		}
	}

	s.recordMiss(key)
	return false, nil
}

// Invalidate removes a key from both tiers. Idempotent.
func (s *Store) Invalidate(ctx context.Context, key string) {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()
	s.setEntriesGauge(size)

	if existed && s.metrics != nil {
		s.metrics.RecordCacheInvalidations(s.policy.Namespace(key), 1)
	}

	if s.durable != nil && s.policy.Durable(key) {
		s.durableDelete(ctx, key)
	}
}

// InvalidatePattern removes every key matching the glob pattern from
// both tiers and returns the number of volatile entries removed. The
// wildcard never crosses namespaces: "tickets_*_42" does not match
// "ticket_detail_7".
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) int {
	s.mu.Lock()
	removed := 0
	for key := range s.entries {
		if matched, err := path.Match(pattern, key); err == nil && matched {
			delete(s.entries, key)
			removed++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.setEntriesGauge(size)

	if removed > 0 && s.metrics != nil {
		s.metrics.RecordCacheInvalidations(s.policy.Namespace(pattern), removed)
	}

	if s.durable != nil {
		s.durableDeletePattern(ctx, pattern)
	}

	return removed
}

// Clear empties the volatile tier and deletes every durable key under
// the store's namespace prefix.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	s.setEntriesGauge(0)

	if s.durable != nil {
		s.durableDeletePattern(ctx, "*")
	}
}

// Cleanup sweeps expired entries from the volatile tier and deletes
// their durable mirrors. Returns the number of entries removed.
func (s *Store) Cleanup(ctx context.Context) int {
	now := time.Now()

	s.mu.Lock()
	var expired []string
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			expired = append(expired, key)
		}
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.setEntriesGauge(size)

	for _, key := range expired {
		if s.durable != nil && s.policy.Durable(key) {
			s.durableDelete(ctx, key)
		}
	}

	if len(expired) > 0 {
		s.logger.Debug("swept expired cache entries", zap.Int("removed", len(expired)))
	}

	return len(expired)
}

// Len returns the current volatile tier entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the janitor. It does not close the Redis client, which
// is owned by the application.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.stopJanitor != nil {
			close(s.stopJanitor)
			<-s.janitorDone
		}
	})
	return nil
}

// evictExpired drops a lazily discovered expired entry. The expiry is
// rechecked under the write lock so a concurrent fresh Set survives.
func (s *Store) evictExpired(key string) {
	now := time.Now()
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && now.After(cur.expiresAt) {
		delete(s.entries, key)
		s.logger.Debug("evicted expired cache entry", zap.String("key", key))
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.setEntriesGauge(size)
}

func (s *Store) decode(key string, data []byte, dest any) (bool, error) {
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: decode cached value for %q: %v", apperrors.ErrInvalidArgument, key, err)
	}
	return true, nil
}

// --- durable tier ---

func (s *Store) durableSet(ctx context.Context, key string, data []byte, expiresAt time.Time) {
	payload, err := json.Marshal(durableEnvelope{Value: data, Expiry: expiresAt.UnixMilli()})
	if err != nil {
		return
	}
	if err := s.durable.Set(ctx, s.prefix+key, payload, time.Until(expiresAt)).Err(); err != nil {
		s.absorbDurableError("set", key, err)
	}
}

// durableGet returns the payload and its absolute expiry. Malformed
// and stale entries are deleted and reported as misses.
func (s *Store) durableGet(ctx context.Context, key string) ([]byte, time.Time, bool) {
	payload, err := s.durable.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false
		}
		s.absorbDurableError("get", key, err)
		return nil, time.Time{}, false
	}

	var env durableEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		s.logger.Warn("discarding malformed durable entry", zap.String("key", key), zap.Error(err))
		s.durableDelete(ctx, key)
		return nil, time.Time{}, false
	}

	expiresAt := time.UnixMilli(env.Expiry)
	if !time.Now().Before(expiresAt) {
		s.durableDelete(ctx, key)
		return nil, time.Time{}, false
	}

	return env.Value, expiresAt, true
}

func (s *Store) durableDelete(ctx context.Context, key string) {
	if err := s.durable.Del(ctx, s.prefix+key).Err(); err != nil {
		s.absorbDurableError("delete", key, err)
	}
}

func (s *Store) durableDeletePattern(ctx context.Context, pattern string) {
	match := s.prefix + pattern
	var cursor uint64
	for {
		keys, nextCursor, err := s.durable.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			s.absorbDurableError("scan", pattern, err)
			return
		}

		if len(keys) > 0 {
			if err := s.durable.Del(ctx, keys...).Err(); err != nil {
				s.absorbDurableError("delete", pattern, err)
				return
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return
		}
	}
}

func (s *Store) absorbDurableError(operation, key string, err error) {
	s.logger.Warn("durable cache tier failure absorbed",
		zap.String("operation", operation),
		zap.String("key", key),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordCacheDurableError(operation)
	}
}

// --- janitor ---

func (s *Store) runJanitor(interval time.Duration) {
	defer close(s.janitorDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopJanitor:
			return
		}
	}
}

// --- metrics ---

func (s *Store) recordHit(key, tier string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.policy.Namespace(key), tier)
	}
}

func (s *Store) recordMiss(key string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.policy.Namespace(key))
	}
}

func (s *Store) setEntriesGauge(n int) {
	if s.metrics != nil {
		s.metrics.SetCacheEntries(n)
	}
}
