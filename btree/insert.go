package btree

import (
	"context"
	"fmt"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dacapoday/idxkv/nodestore"
)

// pathEntry is one step of the descent recorded while searching for the
// target leaf, so a later split can promote into the right parent at the
// right child position.
type pathEntry struct {
	id         uint64
	childIndex int
}

// Insert implements spec.md §4.4's Insert: descend to the existing entry
// (wherever in the tree it lives, or to the target leaf if new), update
// in place on an existing key, or insert-with-split-and-promote
// otherwise.
func (t *Tree) Insert(ctx context.Context, tx kvtx.Tx, key []byte, payload bkeys.Payload) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if !tx.Writable() {
		return kvtx.ErrReadOnly
	}

	store, err := t.store(tx, t.opts.Variant)
	if err != nil {
		return err
	}
	state, err := store.LoadState(ctx, t.opts.Order)
	if err != nil {
		return err
	}
	store.SetVariant(state.Variant)

	if state.RootID == 0 {
		return t.createFirstRoot(ctx, store, state, key, payload)
	}

	var path []pathEntry
	current := state.RootID
	for {
		node, err := t.fetch(ctx, store, current)
		if err != nil {
			return err
		}

		if node.Container.Contains(key) {
			node.Container.Insert(key, payload)
			if err := t.put(ctx, store, node); err != nil {
				return err
			}
			return store.SaveState(ctx, state)
		}

		if node.Kind == nodestore.KindLeaf {
			return t.insertAtLeaf(ctx, store, state, node, path, key, payload)
		}

		items := collectItems(node.Container)
		idx, _ := locate(items, key)
		if idx >= len(node.Children) {
			return fmt.Errorf("%w: node %d: child index %d out of range", ErrCorruptTree, node.ID, idx)
		}
		path = append(path, pathEntry{id: node.ID, childIndex: idx})
		current = node.Children[idx]
	}
}

func (t *Tree) createFirstRoot(ctx context.Context, store *nodestore.Store, state *nodestore.State, key []byte, payload bkeys.Payload) error {
	container, err := bkeys.New(state.Variant)
	if err != nil {
		return err
	}
	container.Insert(key, payload)

	id := store.NewID(state)
	leaf := &nodestore.Node{ID: id, Kind: nodestore.KindLeaf, Container: container}
	if err := t.put(ctx, store, leaf); err != nil {
		return err
	}

	state.RootID = id
	state.Height = 1
	state.Count = 1
	return store.SaveState(ctx, state)
}

func (t *Tree) insertAtLeaf(ctx context.Context, store *nodestore.Store, state *nodestore.State, leaf *nodestore.Node, path []pathEntry, key []byte, payload bkeys.Payload) error {
	leaf.Container.Insert(key, payload)

	if leaf.Container.Len() <= int(state.Order) {
		if err := t.put(ctx, store, leaf); err != nil {
			return err
		}
		state.Count++
		return store.SaveState(ctx, state)
	}

	return t.splitAndPromote(ctx, store, state, leaf, path)
}

// splitAndPromote implements spec.md §4.4 steps 5-8: split the over-full
// node, promote its median (key,payload) along the recorded descent
// path, recursing into the parent if that overflows too, and growing a
// new root if promotion reaches above the current one.
func (t *Tree) splitAndPromote(ctx context.Context, store *nodestore.Store, state *nodestore.State, node *nodestore.Node, path []pathEntry) error {
	for {
		n := node.Container.Len()
		mi := bkeys.MedianIndex(n)

		left, medianKey, medianPayload, right := node.Container.SplitAtMedian()
		if t.opts.Metrics != nil {
			t.opts.Metrics.Splits.Inc()
		}

		var leftChildren, rightChildren []uint64
		if node.Kind == nodestore.KindInternal {
			leftChildren = append([]uint64(nil), node.Children[:mi+1]...)
			rightChildren = append([]uint64(nil), node.Children[mi+1:]...)
		}

		node.Container = left
		node.Children = leftChildren
		if err := t.put(ctx, store, node); err != nil {
			return err
		}

		rightID := store.NewID(state)
		rightNode := &nodestore.Node{ID: rightID, Kind: node.Kind, Container: right, Children: rightChildren}
		if err := t.put(ctx, store, rightNode); err != nil {
			return err
		}

		if len(path) == 0 {
			return t.promoteNewRoot(ctx, store, state, node.ID, rightID, medianKey, medianPayload)
		}

		last := path[len(path)-1]
		path = path[:len(path)-1]

		parent, err := t.fetch(ctx, store, last.id)
		if err != nil {
			return err
		}
		parent.Container.Insert(medianKey, medianPayload)
		parent.Children = insertChildAfter(parent.Children, last.childIndex, rightID)
		if t.opts.Metrics != nil {
			t.opts.Metrics.Promotions.Inc()
		}

		if parent.Container.Len() <= int(state.Order) {
			if err := t.put(ctx, store, parent); err != nil {
				return err
			}
			state.Count++
			return store.SaveState(ctx, state)
		}

		node = parent
	}
}

func (t *Tree) promoteNewRoot(ctx context.Context, store *nodestore.Store, state *nodestore.State, leftID, rightID uint64, medianKey []byte, medianPayload bkeys.Payload) error {
	container, err := bkeys.New(state.Variant)
	if err != nil {
		return err
	}
	container.Insert(medianKey, medianPayload)

	rootID := store.NewID(state)
	root := &nodestore.Node{
		ID:        rootID,
		Kind:      nodestore.KindInternal,
		Container: container,
		Children:  []uint64{leftID, rightID},
	}
	if err := t.put(ctx, store, root); err != nil {
		return err
	}
	if t.opts.Metrics != nil {
		t.opts.Metrics.Promotions.Inc()
	}

	state.RootID = rootID
	state.Height++
	state.Count++
	return store.SaveState(ctx, state)
}

// insertChildAfter inserts id into children immediately after position i
// (spec.md §4.4 step 6).
func insertChildAfter(children []uint64, i int, id uint64) []uint64 {
	out := make([]uint64, len(children)+1)
	copy(out, children[:i+1])
	out[i+1] = id
	copy(out[i+2:], children[i+1:])
	return out
}
