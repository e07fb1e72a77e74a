package session

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process CacheBackend.
type MemoryCache struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string]*Session)}
}

func (c *MemoryCache) Get(_ context.Context, token string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[token]
	if !ok {
		return nil, ErrNotFoundOrExpired
	}
	return s.Clone(), nil
}

// Set stores a copy of s. An existing entry keeps the later of the two
// activity timestamps.
func (c *MemoryCache) Set(_ context.Context, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := s.Clone()
	if old, ok := c.sessions[s.Token]; ok && old.LastActivityAt.After(cp.LastActivityAt) {
		cp.LastActivityAt = old.LastActivityAt
	}
	c.sessions[s.Token] = cp
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, tokens ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range tokens {
		delete(c.sessions, t)
	}
	return nil
}

func (c *MemoryCache) EvictIdle(_ context.Context, idleCutoff, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for token, s := range c.sessions {
		if s.LastActivityAt.Before(idleCutoff) || s.IsExpired(now) {
			delete(c.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of cached sessions.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}
