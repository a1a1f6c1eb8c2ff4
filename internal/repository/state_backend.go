package repository

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"
)

// StateBackend persists booking-session key/value pairs.  Keys are already
// scoped to a session by the caller (see booking.Store); backends only
// need to support exact-key access and prefix enumeration.  Get returns
// ErrKeyNotFound for unset keys.
type StateBackend interface {
    Set(ctx context.Context, key, value string) error
    Get(ctx context.Context, key string) (string, error)
    Delete(ctx context.Context, keys ...string) error
    Keys(ctx context.Context, prefix string) ([]string, error)
    // Probe writes and removes a sentinel key to check that the medium is
    // writable.
    Probe(ctx context.Context) error
}

const probeKey = "__storage_test__"

// MemoryKV is a process-local StateBackend.  It is safe for concurrent use
// by multiple sessions and is the default backend in development and tests.
//
// Expired entries are dropped when Get or Keys meets them, and Set sweeps
// the whole map at most once per ttl.
type MemoryKV struct {
    mu        sync.RWMutex
    data      map[string]memEntry
    ttl       time.Duration
    now       func() time.Time
    nextSweep time.Time
}

type memEntry struct {
    value     string
    expiresAt time.Time
}

// NewMemoryKV returns an empty MemoryKV.  A ttl of zero keeps entries until
// they are deleted.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
    return &MemoryKV{data: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryKV) expired(e memEntry) bool {
    return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
    e := memEntry{value: value}
    if m.ttl > 0 {
        e.expiresAt = m.now().Add(m.ttl)
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.ttl > 0 && !m.now().Before(m.nextSweep) {
        m.sweepLocked()
        m.nextSweep = m.now().Add(m.ttl)
    }
    m.data[key] = e
    return nil
}

// sweepLocked deletes every expired entry.  m.mu must be held for writing.
func (m *MemoryKV) sweepLocked() {
    for k, e := range m.data {
        if m.expired(e) {
            delete(m.data, k)
        }
    }
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    e, ok := m.data[key]
    if !ok {
        return "", ErrKeyNotFound
    }
    if m.expired(e) {
        delete(m.data, key)
        return "", ErrKeyNotFound
    }
    return e.value, nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
    m.mu.Lock()
    for _, k := range keys {
        delete(m.data, k)
    }
    m.mu.Unlock()
    return nil
}

// Keys returns the live keys beginning with prefix in lexical order and
// drops the expired ones it meets.
func (m *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []string
    for k, e := range m.data {
        if !strings.HasPrefix(k, prefix) {
            continue
        }
        if m.expired(e) {
            delete(m.data, k)
            continue
        }
        out = append(out, k)
    }
    sort.Strings(out)
    return out, nil
}

func (m *MemoryKV) Probe(ctx context.Context) error {
    if err := m.Set(ctx, probeKey, probeKey); err != nil {
        return err
    }
    return m.Delete(ctx, probeKey)
}

// Len reports the number of entries held.  Expired entries count until a
// read or a sweep drops them.
func (m *MemoryKV) Len() int {
    m.mu.RLock()
    defer m.mu.RUnlock()
    return len(m.data)
}
