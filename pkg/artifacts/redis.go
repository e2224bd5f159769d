package artifacts

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "tryon:artifact:"

// RedisStore keeps artifacts in Redis, one value per artifact plus a small
// metadata hash (size, mtime). Useful when the agent process is restarted
// mid-session or several processes share one wardrobe.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption tunes a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the default "tryon:artifact:" key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL expires artifacts after d. Zero (the default) keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedisStore wraps an existing client. The client's lifecycle stays with
// the caller.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: defaultRedisPrefix}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RedisStore) dataKey(name string) string { return s.prefix + "data:" + name }
func (s *RedisStore) metaKey(name string) string { return s.prefix + "meta:" + name }

func (s *RedisStore) Write(ctx context.Context, name string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.dataKey(name), data, s.ttl)
	pipe.HSet(ctx, s.metaKey(name),
		"size", strconv.Itoa(len(data)),
		"mtime", strconv.FormatInt(time.Now().UnixNano(), 10),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.metaKey(name), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.dataKey(name)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis read %s: %w", name, err)
	}
	return data, nil
}

func (s *RedisStore) List(ctx context.Context, prefix string) ([]Info, error) {
	pattern := s.dataKey(prefix) + "*"
	var names []string
	iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix+"data:"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	sort.Strings(names)

	out := make([]Info, 0, len(names))
	for _, name := range names {
		info := Info{Name: name}
		meta, err := s.rdb.HGetAll(ctx, s.metaKey(name)).Result()
		if err == nil {
			if n, err := strconv.ParseInt(meta["size"], 10, 64); err == nil {
				info.Size = n
			}
			if ns, err := strconv.ParseInt(meta["mtime"], 10, 64); err == nil {
				info.ModTime = time.Unix(0, ns)
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.dataKey(name), s.metaKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.dataKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", name, err)
	}
	return n > 0, nil
}
