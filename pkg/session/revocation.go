package session

import (
	"container/heap"
	"sync"
	"time"
)

// revocationSet remembers revoked tokens until a deadline after which the
// token could not validate anyway. Deadlines are kept in a min-heap so
// pruning touches only what has lapsed.
type revocationSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
	queue   revocationQueue
}

func newRevocationSet() *revocationSet {
	return &revocationSet{entries: make(map[string]time.Time)}
}

// add marks token revoked until the given time. Re-adding extends the deadline.
func (r *revocationSet) add(token string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[token]; ok && !until.After(cur) {
		return
	}
	r.entries[token] = until
	heap.Push(&r.queue, revocationEntry{token: token, until: until})
}

func (r *revocationSet) contains(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[token]
	return ok
}

// prune drops entries whose deadline is not after now.
func (r *revocationSet) prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for r.queue.Len() > 0 && !r.queue[0].until.After(now) {
		e := heap.Pop(&r.queue).(revocationEntry)
		// A later add may have extended this token; only its newest entry counts.
		if cur, ok := r.entries[e.token]; ok && cur.Equal(e.until) {
			delete(r.entries, e.token)
			n++
		}
	}
	return n
}

func (r *revocationSet) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type revocationEntry struct {
	token string
	until time.Time
}

type revocationQueue []revocationEntry

func (q revocationQueue) Len() int           { return len(q) }
func (q revocationQueue) Less(i, j int) bool { return q[i].until.Before(q[j].until) }
func (q revocationQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *revocationQueue) Push(x any)        { *q = append(*q, x.(revocationEntry)) }
func (q *revocationQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
