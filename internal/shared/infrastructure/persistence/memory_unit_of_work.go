package persistence

import (
	"context"
	"sync"
)

// Snapshotter is an in-memory store that can capture its state. The returned
// function restores that state.
type Snapshotter interface {
	Snapshot() (restore func())
}

type memoryTxKey struct{}

type memoryTx struct {
	restores []func()
	owned    bool
}

// MemoryUnitOfWork serializes in-memory commands behind one mutex and
// restores every participating store on rollback.
type MemoryUnitOfWork struct {
	mu     sync.Mutex
	stores []Snapshotter
}

// NewMemoryUnitOfWork creates a unit of work over the given stores.
func NewMemoryUnitOfWork(stores ...Snapshotter) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{stores: stores}
}

// Begin acquires the write lock and snapshots every store. Nested calls join
// the outer unit.
func (u *MemoryUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return context.WithValue(ctx, memoryTxKey{}, &memoryTx{restores: tx.restores}), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u.mu.Lock()
	tx := &memoryTx{owned: true}
	for _, s := range u.stores {
		tx.restores = append(tx.restores, s.Snapshot())
	}
	return context.WithValue(ctx, memoryTxKey{}, tx), nil
}

// Commit releases the lock if this unit owns it.
func (u *MemoryUnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx)
	if !ok {
		return ErrNoTransaction
	}
	if tx.owned {
		u.mu.Unlock()
	}
	return nil
}

// Rollback restores the snapshots and releases the lock if this unit owns it.
func (u *MemoryUnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx)
	if !ok {
		return ErrNoTransaction
	}
	if !tx.owned {
		return nil
	}
	for i := len(tx.restores) - 1; i >= 0; i-- {
		tx.restores[i]()
	}
	u.mu.Unlock()
	return nil
}
