package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

var (
	laptop = session.RequestContext{IP: "203.0.113.10", UserAgent: "Mozilla/5.0 (Macintosh) Firefox/128.0"}
	phone  = session.RequestContext{IP: "203.0.113.10", UserAgent: "Mozilla/5.0 (iPhone) Safari/17.0"}
	// roaming is laptop on a different network.
	roaming = session.RequestContext{IP: "198.51.100.77", UserAgent: laptop.UserAgent}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	mgr     *session.Manager
	clock   *fakeClock
	durable *session.MemoryDurable
	cache   *session.MemoryCache
	audit   *audit.MemoryStorage
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()

	f := &fixture{
		clock:   newFakeClock(),
		durable: session.NewMemoryDurable(),
		cache:   session.NewMemoryCache(),
		audit:   audit.NewMemoryStorage(),
	}

	base := []session.Option{
		session.WithConfig(session.Config{TTL: 24 * time.Hour}),
		session.WithClock(f.clock.Now),
		session.WithDurable(f.durable),
		session.WithCache(f.cache),
		session.WithAuditLogger(audit.NewLogger(f.audit)),
	}
	f.mgr = session.New(append(base, opts...)...)
	t.Cleanup(func() { _ = f.mgr.Close() })
	return f
}

// failingDurable wraps MemoryDurable and fails the configured operations.
type failingDurable struct {
	*session.MemoryDurable
	mu   sync.Mutex
	fail map[string]bool
}

var errDBDown = errors.New("connection refused")

func newFailingDurable() *failingDurable {
	return &failingDurable{MemoryDurable: session.NewMemoryDurable(), fail: map[string]bool{}}
}

func (d *failingDurable) set(op string, fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[op] = fail
}

func (d *failingDurable) failing(op string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fail[op]
}

func (d *failingDurable) FindActive(ctx context.Context, token string, now time.Time) (*session.Session, error) {
	if d.failing("find") {
		return nil, errDBDown
	}
	return d.MemoryDurable.FindActive(ctx, token, now)
}

func (d *failingDurable) DeleteByUser(ctx context.Context, userID uuid.UUID, except string) ([]string, error) {
	if d.failing("delete_by_user") {
		return nil, errDBDown
	}
	return d.MemoryDurable.DeleteByUser(ctx, userID, except)
}

func (d *failingDurable) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if d.failing("delete_expired") {
		return 0, errDBDown
	}
	return d.MemoryDurable.DeleteExpired(ctx, now)
}

// lastEvent returns the most recent audit event recorded for action.
func lastEvent(t *testing.T, storage *audit.MemoryStorage, action string) audit.Event {
	t.Helper()

	events := storage.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Action == action {
			return events[i]
		}
	}
	require.Failf(t, "missing audit event", "no %q event recorded", action)
	return audit.Event{}
}
