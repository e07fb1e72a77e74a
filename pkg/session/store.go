package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// CacheBackend is the fast tier. A miss is reported as ErrNotFoundOrExpired;
// any other error is treated as a miss by Store and logged.
type CacheBackend interface {
	Get(ctx context.Context, token string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, tokens ...string) error
	// EvictIdle drops entries whose last activity is before idleCutoff or
	// whose expiry is not after now, returning how many were dropped.
	EvictIdle(ctx context.Context, idleCutoff, now time.Time) (int, error)
}

// DurableBackend is the persistent tier.
type DurableBackend interface {
	Insert(ctx context.Context, s *Session) error
	// FindActive returns ErrNotFoundOrExpired when no row expires after now.
	FindActive(ctx context.Context, token string, now time.Time) (*Session, error)
	// TouchActivity sets last activity to at unless the stored value is later.
	// It returns ErrNotFoundOrExpired when the row no longer exists.
	TouchActivity(ctx context.Context, token string, at time.Time) error
	// Delete removes one row. Deleting a missing row is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteByUser removes every row of userID except exceptToken in a single
	// statement and returns the removed tokens.
	DeleteByUser(ctx context.Context, userID uuid.UUID, exceptToken string) ([]string, error)
	// DeleteExpired removes rows whose expiry is not after now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Store composes a cache in front of a durable backend.
type Store struct {
	cache   CacheBackend
	durable DurableBackend
	log     *slog.Logger
	group   singleflight.Group
}

// NewStore composes cache and durable. A nil logger discards.
func NewStore(cache CacheBackend, durable DurableBackend, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{cache: cache, durable: durable, log: log}
}

// Put writes s to the durable tier, then the cache.
func (st *Store) Put(ctx context.Context, s *Session) error {
	if err := st.durable.Insert(ctx, s); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	st.cacheSet(ctx, s)
	return nil
}

// Lookup returns the session for token from the cache, falling back to the
// durable tier and repopulating the cache. Concurrent misses for the same
// token share one durable query.
func (st *Store) Lookup(ctx context.Context, token string, now time.Time) (*Session, error) {
	s, err := st.cache.Get(ctx, token)
	if err == nil {
		if s.IsExpired(now) {
			return nil, ErrNotFoundOrExpired
		}
		return s, nil
	}
	if !errors.Is(err, ErrNotFoundOrExpired) {
		st.log.WarnContext(ctx, "session cache read failed", logger.SessionID(token), logger.Error(err))
	}

	v, err, _ := st.group.Do(token, func() (any, error) {
		s, err := st.durable.FindActive(ctx, token, now)
		if err != nil {
			return nil, err
		}
		st.cacheSet(ctx, s)
		return s, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFoundOrExpired) {
			return nil, ErrNotFoundOrExpired
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return v.(*Session).Clone(), nil
}

// Touch records activity at s.LastActivityAt in both tiers. When the durable
// row is gone the cache entry is dropped and ErrNotFoundOrExpired returned,
// so a cached copy never outlives a revocation made elsewhere.
func (st *Store) Touch(ctx context.Context, s *Session) error {
	if err := st.durable.TouchActivity(ctx, s.Token, s.LastActivityAt); err != nil {
		if errors.Is(err, ErrNotFoundOrExpired) {
			st.cacheDelete(ctx, s.Token)
			return ErrNotFoundOrExpired
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	st.cacheSet(ctx, s)
	return nil
}

// Remove deletes token from the durable tier, then from the cache.
func (st *Store) Remove(ctx context.Context, token string) error {
	err := st.durable.Delete(ctx, token)
	st.cacheDelete(ctx, token)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// RemoveByUser deletes every session of userID except exceptToken and
// returns the removed tokens.
func (st *Store) RemoveByUser(ctx context.Context, userID uuid.UUID, exceptToken string) ([]string, error) {
	tokens, err := st.durable.DeleteByUser(ctx, userID, exceptToken)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	st.cacheDelete(ctx, tokens...)
	return tokens, nil
}

// Sweep deletes expired durable rows and evicts idle or expired cache entries.
func (st *Store) Sweep(ctx context.Context, idleCutoff, now time.Time) (durable, cached int, err error) {
	durable, err = st.durable.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, errors.Join(ErrStoreUnavailable, err)
	}
	cached, err = st.cache.EvictIdle(ctx, idleCutoff, now)
	if err != nil {
		st.log.WarnContext(ctx, "session cache eviction failed", logger.Error(err))
	}
	return durable, cached, nil
}

func (st *Store) cacheSet(ctx context.Context, s *Session) {
	if err := st.cache.Set(ctx, s); err != nil {
		st.log.WarnContext(ctx, "session cache write failed", logger.SessionID(s.Token), logger.Error(err))
	}
}

func (st *Store) cacheDelete(ctx context.Context, tokens ...string) {
	if len(tokens) == 0 {
		return
	}
	if err := st.cache.Delete(ctx, tokens...); err != nil {
		st.log.WarnContext(ctx, "session cache delete failed", logger.Error(err))
	}
}
