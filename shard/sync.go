package shard

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Sync invokes fn once per shard, serially in the given order, via each
// shard's own task queue (preserving shard affinity) rather than calling fn
// directly. Cross-shard reads such as an allInstruments/allOrderBooks walk
// use this (spec 4.6: "Cross-shard reads fan out via a per-shard invocation
// with a synchronizing semaphore; the iteration is serial across shards").
//
// A weight-1 semaphore stands in for the original's thread-local completion
// semaphore (tech debt flagged in spec section 9; see DESIGN.md open
// question (c)): it is scoped to this call, shareable across goroutines,
// and carries no per-thread state.
func Sync(ctx context.Context, shards []*Shard, fn func(*Shard)) error {
	sem := semaphore.NewWeighted(1)
	for _, s := range shards {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		cur := s
		cur.Run(func() {
			defer sem.Release(1)
			fn(cur)
		})
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	sem.Release(1)
	return nil
}
