package btree

import (
	"context"
	"iter"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dacapoday/idxkv/nodestore"
)

// IterOrdered walks every (key, payload) pair in the tree in strictly
// ascending key order (property: the tree is an ordered map). The State
// is loaded when IterOrdered is called; nodes are fetched through a
// single Store as the returned sequence is ranged over. A node fetch
// error during the walk ends the sequence early; the error itself is not
// reported.
func (t *Tree) IterOrdered(ctx context.Context, tx kvtx.Tx) (iter.Seq2[[]byte, bkeys.Payload], error) {
	store, err := t.store(tx, t.opts.Variant)
	if err != nil {
		return nil, err
	}
	state, err := store.LoadState(ctx, t.opts.Order)
	if err != nil {
		return nil, err
	}
	store.SetVariant(state.Variant)

	return func(yield func([]byte, bkeys.Payload) bool) {
		if state.RootID == 0 {
			return
		}
		var walk func(id uint64) bool
		walk = func(id uint64) bool {
			node, err := t.fetch(ctx, store, id)
			if err != nil {
				return false
			}
			if node.Kind == nodestore.KindLeaf {
				cont := true
				node.Container.IterOrdered(func(key []byte, payload bkeys.Payload) bool {
					cont = yield(key, payload)
					return cont
				})
				return cont
			}

			items := collectItems(node.Container)
			for i, child := range node.Children {
				if !walk(child) {
					return false
				}
				if i < len(items) {
					if !yield(items[i].key, items[i].payload) {
						return false
					}
				}
			}
			return true
		}
		walk(state.RootID)
	}, nil
}
