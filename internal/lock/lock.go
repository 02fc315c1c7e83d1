package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the key-value backend for product locks. The only primitive the
// manager needs is an atomic create-if-absent with a TTL; an expired key
// counts as absent.
type Store interface {
	// SetIfAbsent stores value under key with the given TTL, but only if the
	// key is absent or expired. Returns true when the key was claimed.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes a key. Deleting an absent or expired key is a no-op.
	Delete(ctx context.Context, key string) error
}

// Reserver performs the conditional stock decrement guarded by availability.
// Satisfied by repository.InventoryRepository.
type Reserver interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}

// Token is the opaque handle returned by a successful acquisition. It is
// required to release the lock.
type Token struct {
	Key       string
	ProductID uuid.UUID
	Quantity  int
}

// Manager provides short-TTL mutual exclusion over product keys during
// checkout, coupling each acquisition with an inventory reservation.
type Manager interface {
	// Acquire claims the per-product lock with bounded retry and then
	// attempts the inventory reservation. Returns a nil token (and nil
	// error) when the lock stayed contended for the whole retry budget or
	// when stock was insufficient; the caller treats both as conflict.
	Acquire(ctx context.Context, productID uuid.UUID, quantity int) (*Token, error)

	// Release deletes the lock key. Safe to call after TTL expiry.
	Release(ctx context.Context, token *Token) error
}
