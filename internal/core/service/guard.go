package service

import (
	"context"
	"sync/atomic"
)

// LocalSaleGuard is an in-process sale-in-progress flag.
type LocalSaleGuard struct {
	held atomic.Bool
}

func NewLocalSaleGuard() *LocalSaleGuard {
	return &LocalSaleGuard{}
}

func (g *LocalSaleGuard) TryAcquire(ctx context.Context) (bool, error) {
	return g.held.CompareAndSwap(false, true), nil
}

func (g *LocalSaleGuard) Release(ctx context.Context) error {
	g.held.Store(false)
	return nil
}

func (g *LocalSaleGuard) Held(ctx context.Context) (bool, error) {
	return g.held.Load(), nil
}
