package repository

import (
    "context"
    "errors"
    "sort"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisKV stores booking state in Redis.  Every key is written under
// Prefix + ":" and refreshed with the configured TTL so that abandoned
// sessions age out on their own.
type RedisKV struct {
    rdb    *redis.Client
    prefix string
    ttl    time.Duration
}

// NewRedisKV returns a RedisKV bound to rdb.  A nil client yields a backend
// whose Probe always fails, letting the caller degrade to no persistence.
func NewRedisKV(rdb *redis.Client, prefix string, ttl time.Duration) *RedisKV {
    if prefix == "" {
        prefix = "booking"
    }
    return &RedisKV{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisKV) full(key string) string { return r.prefix + ":" + key }

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
    if r.rdb == nil {
        return ErrBackendUnavailable
    }
    return r.rdb.Set(ctx, r.full(key), value, r.ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
    if r.rdb == nil {
        return "", ErrBackendUnavailable
    }
    v, err := r.rdb.Get(ctx, r.full(key)).Result()
    if errors.Is(err, redis.Nil) {
        return "", ErrKeyNotFound
    }
    return v, err
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
    if r.rdb == nil {
        return ErrBackendUnavailable
    }
    if len(keys) == 0 {
        return nil
    }
    full := make([]string, 0, len(keys))
    for _, k := range keys {
        full = append(full, r.full(k))
    }
    return r.rdb.Del(ctx, full...).Err()
}

// Keys walks the keyspace with SCAN so large deployments are not blocked
// by KEYS.  Returned keys have the backend prefix removed.
func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
    if r.rdb == nil {
        return nil, ErrBackendUnavailable
    }
    pattern := escapeGlob(r.full(prefix)) + "*"
    strip := r.prefix + ":"
    seen := map[string]struct{}{}
    var out []string
    iter := r.rdb.Scan(ctx, 0, pattern, 100).Iterator()
    for iter.Next(ctx) {
        k := strings.TrimPrefix(iter.Val(), strip)
        if _, dup := seen[k]; dup {
            continue
        }
        seen[k] = struct{}{}
        out = append(out, k)
    }
    if err := iter.Err(); err != nil {
        return nil, err
    }
    sort.Strings(out)
    return out, nil
}

func (r *RedisKV) Probe(ctx context.Context) error {
    if r.rdb == nil {
        return ErrBackendUnavailable
    }
    k := r.full(probeKey)
    if err := r.rdb.Set(ctx, k, probeKey, time.Minute).Err(); err != nil {
        return err
    }
    return r.rdb.Del(ctx, k).Err()
}

// escapeGlob escapes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
    var b strings.Builder
    for _, r := range s {
        switch r {
        case '*', '?', '[', ']', '\\':
            b.WriteByte('\\')
        }
        b.WriteRune(r)
    }
    return b.String()
}
