package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SearchCacheStore caches serialized public search pages. Every listing
// mutation flushes the whole cache, so entries only need short TTLs.
type SearchCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type NoopSearchCacheStore struct{}

func NewNoopSearchCacheStore() *NoopSearchCacheStore { return &NoopSearchCacheStore{} }

func (s *NoopSearchCacheStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopSearchCacheStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopSearchCacheStore) InvalidateAll(context.Context) error { return nil }

type searchCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemorySearchCacheStore struct {
	mu      sync.RWMutex
	entries map[string]searchCacheEntry
}

func NewInMemorySearchCacheStore() *InMemorySearchCacheStore {
	return &InMemorySearchCacheStore{entries: map[string]searchCacheEntry{}}
}

func (s *InMemorySearchCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemorySearchCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = searchCacheEntry{payload: append([]byte(nil), value...), expiresAt: time.Now().UTC().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *InMemorySearchCacheStore) InvalidateAll(context.Context) error {
	s.mu.Lock()
	s.entries = map[string]searchCacheEntry{}
	s.mu.Unlock()
	return nil
}

// RedisSearchCacheStore keeps an index set of live data keys so a full
// invalidation never needs SCAN.
type RedisSearchCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSearchCacheStore(client redis.UniversalClient, prefix string) *RedisSearchCacheStore {
	if prefix == "" {
		prefix = "search_cache"
	}
	return &RedisSearchCacheStore{client: client, prefix: prefix}
}

func (s *RedisSearchCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	val, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisSearchCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(key)
	indexKey := s.indexKey()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.SAdd(ctx, indexKey, dataKey)
	pipe.Expire(ctx, indexKey, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSearchCacheStore) InvalidateAll(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	indexKey := s.indexKey()
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSearchCacheStore) dataKey(cacheKey string) string {
	sum := sha256.Sum256([]byte(cacheKey))
	return fmt.Sprintf("%s:data:%s", s.prefix, hex.EncodeToString(sum[:]))
}

func (s *RedisSearchCacheStore) indexKey() string {
	return fmt.Sprintf("%s:index:all", s.prefix)
}
