package identity

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memoryRecord struct {
	identity Identity
	hash     []byte
}

// MemoryProvider keeps identities in memory. It implements Provider and
// CredentialStore.
type MemoryProvider struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*memoryRecord
	byEmail map[string]uuid.UUID
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		byID:    make(map[uuid.UUID]*memoryRecord),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Add stores id with the given plain-text password. A zero ID is replaced
// with a new one; an empty status defaults to active.
func (p *MemoryProvider) Add(id Identity, password string) (*Identity, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	if id.ID == uuid.Nil {
		id.ID = uuid.New()
	}
	if id.Status == "" {
		id.Status = StatusActive
	}
	id.Email = NormalizeEmail(id.Email)
	id.Permissions = slices.Clone(id.Permissions)

	p.mu.Lock()
	defer p.mu.Unlock()

	if owner, ok := p.byEmail[id.Email]; ok && owner != id.ID {
		return nil, ErrDuplicateEmail
	}
	p.byID[id.ID] = &memoryRecord{identity: id, hash: hash}
	p.byEmail[id.Email] = id.ID

	out := id
	return &out, nil
}

// SetStatus changes the status of a stored identity.
func (p *MemoryProvider) SetStatus(id uuid.UUID, status Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.identity.Status = status
	return nil
}

// Remove deletes a stored identity.
func (p *MemoryProvider) Remove(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rec, ok := p.byID[id]; ok {
		delete(p.byEmail, rec.identity.Email)
		delete(p.byID, id)
	}
}

func (p *MemoryProvider) GetActiveByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rec, ok := p.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !rec.identity.IsActive() {
		return nil, ErrInactive
	}
	return rec.copy(), nil
}

func (p *MemoryProvider) GetCredentialsByEmail(_ context.Context, email string) (*Identity, []byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, nil, ErrNotFound
	}
	rec := p.byID[id]
	return rec.copy(), slices.Clone(rec.hash), nil
}

func (r *memoryRecord) copy() *Identity {
	out := r.identity
	out.Permissions = slices.Clone(r.identity.Permissions)
	return &out
}
