package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movitex/internal/shared/constants"
	"movitex/pkg/cache"
)

var (
	ErrNotFound = errors.New("reservation session not found")
	ErrCorrupt  = errors.New("reservation session record is corrupt")
)

// Store persists one tab's reservation session.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Update(ctx context.Context, mutate func(rec *Record)) error
	LoadLegacy(ctx context.Context) (Legacy, error)
	DeleteLegacy(ctx context.Context) error
	Clear(ctx context.Context) error
}

// RedisStore keeps the session under keys scoped to a single tab id.
type RedisStore struct {
	cache cache.Service
	tabID string
	ttl   time.Duration
}

func NewRedisStore(c cache.Service, tabID string, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, tabID: tabID, ttl: ttl}
}

func (s *RedisStore) key(name string) string {
	return constants.BuildTabKey(s.tabID, name)
}

// Load returns ErrNotFound when no record exists and ErrCorrupt when the
// stored value does not decode.
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	var rec Record
	err := s.cache.Get(ctx, s.key(constants.SESSION_KEY_RESERVATION), &rec)
	switch {
	case err == nil:
		return &rec, nil
	case errors.Is(err, cache.ErrCacheMiss):
		return nil, ErrNotFound
	case errors.Is(err, cache.ErrDecode):
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	if err := s.cache.Set(ctx, s.key(constants.SESSION_KEY_RESERVATION), rec, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Update reads the current record, applies mutate and writes the result
// back. A missing or corrupt record starts from empty.
func (s *RedisStore) Update(ctx context.Context, mutate func(rec *Record)) error {
	rec, err := s.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrCorrupt) {
			return err
		}
		rec = &Record{}
	}
	mutate(rec)
	return s.Save(ctx, rec)
}

func (s *RedisStore) LoadLegacy(ctx context.Context) (Legacy, error) {
	var l Legacy
	targets := []**string{&l.Trip, &l.TimerStart, &l.TimerDeadline, &l.Forms}
	for i, name := range constants.LegacySessionKeys {
		val, err := s.cache.GetRaw(ctx, s.key(name))
		if err != nil {
			if errors.Is(err, cache.ErrCacheMiss) {
				continue
			}
			return Legacy{}, fmt.Errorf("failed to read legacy key %s: %w", name, err)
		}
		*targets[i] = &val
	}
	return l, nil
}

func (s *RedisStore) DeleteLegacy(ctx context.Context) error {
	keys := make([]string, 0, len(constants.LegacySessionKeys))
	for _, name := range constants.LegacySessionKeys {
		keys = append(keys, s.key(name))
	}
	return s.cache.Delete(ctx, keys...)
}

// Clear removes the consolidated record and any legacy remnants.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys := []string{s.key(constants.SESSION_KEY_RESERVATION)}
	for _, name := range constants.LegacySessionKeys {
		keys = append(keys, s.key(name))
	}
	return s.cache.Delete(ctx, keys...)
}
