// Package kvtx defines the narrow KV transaction contract the rest of this
// module consumes but never owns the lifetime of: a handle over an ordered
// byte-keyed store supporting get/set/delete/scan, bound to one transaction.
//
// Commit and cancellation are out of this package's responsibility — they
// belong to whichever concrete backend (kvtx/memkv, kvtx/badgerkv, or an
// external KV) issues the Tx.
package kvtx

import (
	"context"
	"iter"
)

// Tx is the KV transaction contract spec.md §6 requires. Every method may
// suspend (the ctx-carrying signature is this module's stand-in for that
// suspension point, since Go has no async/await); a Tx is used by one
// goroutine at a time for the duration of one public call.
type Tx interface {
	// Get returns the value stored at key, or (nil, nil) if key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores value at key, replacing any existing value.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan returns an ordered, finite sequence of (key, value) pairs with
	// lo <= key < hi. A limit <= 0 means unbounded.
	Scan(ctx context.Context, lo, hi []byte, limit int) (iter.Seq2[[]byte, []byte], error)

	// Writable reports whether Set/Delete are permitted on this handle.
	Writable() bool
}
