package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/crackit/crackit-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Known catalog kinds. Clear removes exactly these.
const (
	KindSubjects  = "subjects"
	KindTopics    = "topics"
	KindQuestions = "questions"
)

var kinds = []string{KindSubjects, KindTopics, KindQuestions}

// Record is one cached entity plus its secondary-index values
// (e.g. a question indexed by subjectId and topicId).
type Record struct {
	ID      string
	Data    []byte
	Indexes map[string]string
}

// IndexFilter narrows GetAll to records whose index field matches a value.
type IndexFilter struct {
	Field string
	Value string
}

// Store is a key-indexed offline cache of catalog data in Redis with a
// time-based staleness policy. A miss or a stale kind is treated by
// callers as "no data"; nothing here is authoritative.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// NewStore creates a Store with the given staleness threshold.
func NewStore(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "offline_cache").Logger(),
	}
}

// Put replaces the cached records of a kind and stamps the refresh time.
// The whole kind is rewritten: the cache mirrors the last good fetch, it
// does not merge.
func (s *Store) Put(ctx context.Context, kind string, records []Record) error {
	key := config.CacheKey.CatalogKey(kind)

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key)
	// The kind's index sets go too: a record whose index value changed
	// must not stay reachable under the old value.
	iter := s.rdb.Scan(ctx, 0, key+":idx:*", 0).Iterator()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache put scan %s: %w", kind, err)
	}
	for _, rec := range records {
		pipe.HSet(ctx, key, rec.ID, rec.Data)
		for field, value := range rec.Indexes {
			pipe.SAdd(ctx, s.indexKey(kind, field, value), rec.ID)
		}
	}
	pipe.Set(ctx, config.CacheKey.CatalogMetaKey(kind), s.now().Unix(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache put %s: %w", kind, err)
	}

	s.log.Debug().Str("kind", kind).Int("count", len(records)).Msg("Catalog kind cached")
	return nil
}

// GetAll returns every cached record of a kind, optionally narrowed by an
// index filter. Returns nil with no error on a complete miss.
func (s *Store) GetAll(ctx context.Context, kind string, filter *IndexFilter) ([][]byte, error) {
	key := config.CacheKey.CatalogKey(kind)

	if filter == nil {
		values, err := s.rdb.HVals(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("cache get %s: %w", kind, err)
		}
		return toBytes(values), nil
	}

	ids, err := s.rdb.SMembers(ctx, s.indexKey(kind, filter.Field, filter.Value)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache index %s.%s: %w", kind, filter.Field, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.GetByIDs(ctx, kind, ids)
}

// GetByIDs fetches specific records of a kind. Unknown ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, kind string, ids []string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := s.rdb.HMGet(ctx, config.CacheKey.CatalogKey(kind), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get by ids %s: %w", kind, err)
	}

	out := make([][]byte, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, []byte(str))
		}
	}
	return out, nil
}

// IsFresh reports whether a kind was refreshed within the staleness
// threshold. A missing or unreadable stamp counts as stale.
func (s *Store) IsFresh(ctx context.Context, kind string) bool {
	val, err := s.rdb.Get(ctx, config.CacheKey.CatalogMetaKey(kind)).Result()
	if err != nil {
		return false
	}
	stamp, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false
	}
	return s.now().Sub(time.Unix(stamp, 0)) < s.ttl
}

// Clear drops every cached kind, its indexes and refresh stamps.
func (s *Store) Clear(ctx context.Context) error {
	pipe := s.rdb.Pipeline()
	for _, kind := range kinds {
		pipe.Del(ctx, config.CacheKey.CatalogKey(kind))
		pipe.Del(ctx, config.CacheKey.CatalogMetaKey(kind))
	}
	// Index sets are enumerated with SCAN since their values are dynamic.
	iter := s.rdb.Scan(ctx, 0, "catalog:*:idx:*", 0).Iterator()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache clear scan: %w", err)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

func (s *Store) indexKey(kind, field, value string) string {
	return fmt.Sprintf("%s:idx:%s:%s", config.CacheKey.CatalogKey(kind), field, value)
}

func toBytes(values []string) [][]byte {
	if len(values) == 0 {
		return nil
	}
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}
