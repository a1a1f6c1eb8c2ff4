// Package booking holds the in-progress booking of one session.  The Store
// is a namespaced key/value view over a repository.StateBackend; on top of
// it the package provides the typed state, step guards and pricing the
// booking pages share.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/cinema-booking-flow/internal/model"
	"github.com/iliyamo/cinema-booking-flow/internal/repository"
)

// InputTarget is the set of currently rendered form fields a restore can
// write into.  Implementations report false from SetFieldValue when no field
// with that id is rendered.
type InputTarget interface {
	SetFieldValue(id, value string) bool
}

// Store is the booking-session key/value store.  Every key is written under
// "<session>:" in the backend, so ClearAll only wipes this session.  When
// the backend failed its probe every operation is a no-op and reads report
// absent.
type Store struct {
	backend   repository.StateBackend
	namespace string
	available bool
	log       zerolog.Logger
}

// Open binds a Store to session and probes the backend once.  A nil backend
// or a failed probe yields an unavailable Store, never an error.
func Open(ctx context.Context, backend repository.StateBackend, session string, log zerolog.Logger) *Store {
	s := &Store{backend: backend, namespace: session + ":", log: log.With().Str("session", session).Logger()}
	if backend == nil {
		return s
	}
	if err := backend.Probe(ctx); err != nil {
		s.log.Warn().Err(err).Msg("booking store unavailable, persistence disabled")
		return s
	}
	s.available = true
	return s
}

// IsAvailable reports whether the backend accepted the probe write.
func (s *Store) IsAvailable() bool { return s.available }

func (s *Store) key(k string) string { return s.namespace + k }

// SetField stores value under key, overwriting any previous value.
func (s *Store) SetField(ctx context.Context, key, value string) {
	if !s.available {
		return
	}
	if err := s.backend.Set(ctx, s.key(key), value); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("set field")
	}
}

// GetField returns the value under key and whether it was set.
func (s *Store) GetField(ctx context.Context, key string) (string, bool) {
	if !s.available {
		return "", false
	}
	v, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("get field")
		}
		return "", false
	}
	return v, true
}

// RemoveField deletes key; removing an absent key is a no-op.
func (s *Store) RemoveField(ctx context.Context, key string) {
	s.removeFields(ctx, key)
}

func (s *Store) removeFields(ctx context.Context, keys ...string) {
	if !s.available || len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.backend.Delete(ctx, full...); err != nil {
		s.log.Error().Err(err).Strs("keys", keys).Msg("remove fields")
	}
}

// SetStep replaces the state of one booking step.  Every key in stepKeys is
// removed first, then only the non-empty, non-zero entries of values are
// written.  Running it twice with the same input leaves the same state.
func (s *Store) SetStep(ctx context.Context, stepKeys []string, values map[string]string) {
	if !s.available {
		return
	}
	s.removeFields(ctx, stepKeys...)
	for _, k := range stepKeys {
		v, ok := values[k]
		if !ok || isBlank(v) {
			continue
		}
		s.SetField(ctx, k, v)
	}
	for k, v := range values {
		if contains(stepKeys, k) || isBlank(v) {
			continue
		}
		s.SetField(ctx, k, v)
	}
}

// isBlank reports the values a step never persists: empty strings and
// numeric zero.
func isBlank(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return true
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && f == 0 {
		return true
	}
	return false
}

func contains(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

// SnapshotInput persists rec under prefix+inputID.
func (s *Store) SnapshotInput(ctx context.Context, prefix, inputID string, rec model.InputRecord) {
	if !s.available {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		s.log.Error().Err(err).Str("input", inputID).Msg("encode input snapshot")
		return
	}
	s.SetField(ctx, prefix+inputID, string(b))
}

// Snapshots returns every decodable snapshot under prefix in key order.
// Malformed records are skipped.
func (s *Store) Snapshots(ctx context.Context, prefix string) []model.InputRecord {
	if !s.available {
		return nil
	}
	keys, err := s.backend.Keys(ctx, s.key(prefix))
	if err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("list snapshots")
		return nil
	}
	out := make([]model.InputRecord, 0, len(keys))
	for _, full := range keys {
		raw, err := s.backend.Get(ctx, full)
		if err != nil {
			continue
		}
		var rec model.InputRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.log.Debug().Err(err).Str("key", full).Msg("skip malformed snapshot")
			continue
		}
		out = append(out, rec)
	}
	return out
}

// RestoreInputs writes every snapshot under prefix back into the matching
// rendered field of target and returns how many fields were restored.
// Snapshots whose field is not rendered are skipped.
func (s *Store) RestoreInputs(ctx context.Context, prefix string, target InputTarget) int {
	n := 0
	for _, rec := range s.Snapshots(ctx, prefix) {
		if target.SetFieldValue(rec.ID, rec.Value) {
			n++
		}
	}
	return n
}

// DestroyPrefixed deletes every key beginning with prefix.
func (s *Store) DestroyPrefixed(ctx context.Context, prefix string) {
	if !s.available {
		return
	}
	keys, err := s.backend.Keys(ctx, s.key(prefix))
	if err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("list prefixed keys")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("destroy prefixed keys")
	}
}

// ClearAll wipes the whole session namespace.
func (s *Store) ClearAll(ctx context.Context) {
	s.DestroyPrefixed(ctx, "")
}
