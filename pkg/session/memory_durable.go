package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDurable is a DurableBackend kept in memory, for development and
// tests. It does not survive restarts.
type MemoryDurable struct {
	mu       sync.Mutex
	sessions map[string]*Session
	writes   int
}

func NewMemoryDurable() *MemoryDurable {
	return &MemoryDurable{sessions: make(map[string]*Session)}
}

func (d *MemoryDurable) Insert(_ context.Context, s *Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	d.sessions[s.Token] = s.Clone()
	return nil
}

func (d *MemoryDurable) FindActive(_ context.Context, token string, now time.Time) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[token]
	if !ok || s.IsExpired(now) {
		return nil, ErrNotFoundOrExpired
	}
	return s.Clone(), nil
}

func (d *MemoryDurable) TouchActivity(_ context.Context, token string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	s, ok := d.sessions[token]
	if !ok {
		return ErrNotFoundOrExpired
	}
	if at.After(s.LastActivityAt) {
		s.LastActivityAt = at
	}
	return nil
}

func (d *MemoryDurable) Delete(_ context.Context, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	delete(d.sessions, token)
	return nil
}

func (d *MemoryDurable) DeleteByUser(_ context.Context, userID uuid.UUID, exceptToken string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	var deleted []string
	for token, s := range d.sessions {
		if s.UserID == userID && token != exceptToken {
			delete(d.sessions, token)
			deleted = append(deleted, token)
		}
	}
	return deleted, nil
}

func (d *MemoryDurable) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	n := 0
	for token, s := range d.sessions {
		if s.IsExpired(now) {
			delete(d.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored rows, expired ones included.
func (d *MemoryDurable) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Writes returns how many mutating calls the backend has served.
func (d *MemoryDurable) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}
