// Package redisstore is a Redis cache tier for session.Manager, shared by
// every process that points at the same server.
//
// Each session is a JSON value under "<prefix><token>" expiring with the
// session. Two sorted sets index tokens by last activity and by expiry so
// EvictIdle can find candidates without scanning keys.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionguard/pkg/session"
)

// DefaultPrefix namespaces keys written by the cache.
const DefaultPrefix = "session:"

// Cache implements session.CacheBackend.
type Cache struct {
	client   redis.UniversalClient
	prefix   string
	activity string
	expiry   string
}

var _ session.CacheBackend = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

func New(client redis.UniversalClient, opts ...Option) *Cache {
	c := &Cache{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(c)
	}
	c.activity = c.prefix + "idx:activity"
	c.expiry = c.prefix + "idx:expiry"
	return c
}

func (c *Cache) key(token string) string {
	return c.prefix + token
}

// Get returns the cached session with the latest recorded activity.
func (c *Cache) Get(ctx context.Context, token string) (*session.Session, error) {
	pipe := c.client.Pipeline()
	get := pipe.Get(ctx, c.key(token))
	score := pipe.ZScore(ctx, c.activity, token)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	data, err := get.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFoundOrExpired
		}
		return nil, err
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if ms, err := score.Result(); err == nil {
		if at := time.UnixMilli(int64(ms)); at.After(s.LastActivityAt) {
			s.LastActivityAt = at
		}
	}
	return &s, nil
}

// Set stores s until it expires. The activity index only moves forward.
func (c *Cache) Set(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(s.Token), data, 0)
		pipe.ExpireAt(ctx, c.key(s.Token), s.ExpiresAt)
		pipe.ZAddGT(ctx, c.activity, redis.Z{Score: float64(s.LastActivityAt.UnixMilli()), Member: s.Token})
		pipe.ZAdd(ctx, c.expiry, redis.Z{Score: float64(s.ExpiresAt.UnixMilli()), Member: s.Token})
		return nil
	})
	return err
}

func (c *Cache) Delete(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := c.remove(ctx, tokens)
	return err
}

// EvictIdle drops entries idle since before idleCutoff or expired at now.
func (c *Cache) EvictIdle(ctx context.Context, idleCutoff, now time.Time) (int, error) {
	idle, err := c.client.ZRangeByScore(ctx, c.activity, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(idleCutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	expired, err := c.client.ZRangeByScore(ctx, c.expiry, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(idle)+len(expired))
	tokens := make([]string, 0, len(idle)+len(expired))
	for _, t := range append(idle, expired...) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return 0, nil
	}
	return c.remove(ctx, tokens)
}

// remove deletes tokens and their index entries, returning how many were
// still indexed.
func (c *Cache) remove(ctx context.Context, tokens []string) (int, error) {
	keys := make([]string, len(tokens))
	members := make([]any, len(tokens))
	for i, t := range tokens {
		keys[i] = c.key(t)
		members[i] = t
	}

	var removed *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		removed = pipe.ZRem(ctx, c.activity, members...)
		pipe.ZRem(ctx, c.expiry, members...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed.Val()), nil
}
