package session

import (
	"context"
	"sync"
	"time"
)

// Revoker records destroyed sessions until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID, tenantID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker is a process-local Revoker for tests and single-replica runs.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty MemoryRevoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Revoke implements Revoker.
func (r *MemoryRevoker) Revoke(_ context.Context, tokenID, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked()
	r.revoked[tokenID] = expiresAt.UTC()
	return nil
}

// IsRevoked implements Revoker.
func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// Purge drops entries whose token has expired and returns how many were removed.
func (r *MemoryRevoker) Purge(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purgeLocked(), nil
}

func (r *MemoryRevoker) purgeLocked() int64 {
	now := r.now()
	var n int64
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
			n++
		}
	}
	return n
}
