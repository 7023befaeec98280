// Package index implements C6, the Index Facade: the thin binder
// described in spec.md §4.5 that ties one Key Provider's scope, a chosen
// bkeys.Container variant, and a persisted Tree State location to a
// materialized btree.Tree. Grounded on the teacher's kv/kv.go + kv/tx.go
// DB/Tx wrapper shape (Begin/pending/Commit over a single store),
// narrowed from a whole-database wrapper to one named index.
package index

import (
	"context"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/btree"
	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dacapoday/idxkv/nodestore"
)

// Facade binds one named index (identified by its KeyProvider's scope)
// to a btree.Tree. The caller is responsible for encoding logical tuples
// into composite key bytes via keycodec before calling Insert or Search
// — the facade never re-derives a key from a tuple, keeping it a thin
// binder as spec.md describes.
type Facade struct {
	tree *btree.Tree
}

// Open binds a Facade to provider's scope with the given btree.Options.
// No I/O happens until Insert, Search or IterOrdered is called; the
// persisted State is read (and, if absent, implicitly created empty on
// first write) by those calls themselves, per spec.md §3's Lifecycle.
func Open(provider nodestore.KeyProvider, opts btree.Options) *Facade {
	return &Facade{tree: btree.Open(provider, opts)}
}

// Insert adds or updates the payload stored at an already-encoded
// composite key.
func (f *Facade) Insert(ctx context.Context, tx kvtx.Tx, indexedKey []byte, payload bkeys.Payload) error {
	return f.tree.Insert(ctx, tx, indexedKey, payload)
}

// Search looks up the payload stored at an already-encoded composite
// key.
func (f *Facade) Search(ctx context.Context, tx kvtx.Tx, indexedKey []byte) (bkeys.Payload, bool, error) {
	return f.tree.Search(ctx, tx, indexedKey)
}

// IterOrdered walks every (key, payload) pair the index holds in
// strictly ascending key order — the basis for range scans over a
// composite-key prefix/suffix bound (spec.md §4.1) and for cmd/idxview's
// browsing.
func (f *Facade) IterOrdered(ctx context.Context, tx kvtx.Tx) (func(yield func([]byte, bkeys.Payload) bool), error) {
	return f.tree.IterOrdered(ctx, tx)
}
