// Package btree implements C5, the B-Tree Engine: the ordered map over
// search, insertion-with-split, and the root/height/state bookkeeping of
// spec.md §4.4, parameterized by which bkeys.Container variant a given
// instance uses.
//
// Structurally grounded on the teacher's bptree.go root/state-holder
// shape and its height-by-descent and descent-path bookkeeping
// (bptree/high.go, bptree/seek.go, bptree/level.go), adapted from
// byte-budgeted physical paging to the count-bounded (order m) container
// split this spec requires.
package btree

import (
	"context"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dacapoday/idxkv/nodestore"
	"go.uber.org/zap"
)

// DefaultOrder is spec.md §3's default node order.
const DefaultOrder = 100

// Options configures a Tree. Mirrors the teacher's BlockOption/option
// pattern: a value struct passed at construction, no global singletons.
type Options struct {
	// Order is the B-tree's order m; defaults to DefaultOrder.
	Order uint32

	// Variant chooses the Key Container implementation for a tree
	// created for the first time. Ignored once a State record already
	// exists — the persisted Variant byte wins.
	Variant bkeys.Variant

	// Logger defaults to zap.NewNop() when unset.
	Logger *zap.Logger

	// Metrics is optional and nil-safe.
	Metrics *Metrics

	// CacheSize bounds the node store's decode cache, which lives for one
	// public call (see Tree).
	CacheSize int

	// MaxNodeSize bounds one serialized node's byte length; <= 0 means
	// unbounded.
	MaxNodeSize int
}

func (o Options) normalized() Options {
	if o.Order == 0 {
		o.Order = DefaultOrder
	}
	if o.Variant == 0 {
		o.Variant = bkeys.VariantTrie
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Tree is one B-tree instance bound to a KeyProvider's scope. It holds no
// transaction state itself: every public operation opens its own
// nodestore.Store over the Tx it is given and releases it when the call
// returns (spec.md §9 "Transaction coupling" — a scoped borrow with
// guaranteed release). This means a Store's decode cache is scoped to
// one call, not to one transaction — kvtx.Tx has no Close/Done hook a
// Tree could use to evict a longer-lived Store when a transaction ends,
// so Search/Insert/IterOrdered each pay a cold cache rather than risk
// holding one past its transaction's lifetime. Correctness does not
// depend on the cache: a miss always falls back to the Tx itself.
type Tree struct {
	provider nodestore.KeyProvider
	opts     Options
}

// Open binds a Tree to provider's scope. No I/O happens until Search,
// Insert, IterOrdered or Stats is called.
func Open(provider nodestore.KeyProvider, opts Options) *Tree {
	return &Tree{provider: provider, opts: opts.normalized()}
}

func (t *Tree) store(tx kvtx.Tx, variant bkeys.Variant) (*nodestore.Store, error) {
	return nodestore.Open(tx, t.provider, variant, nodestore.Options{
		CacheSize:    t.opts.CacheSize,
		Logger:       t.opts.Logger,
		MaxValueSize: t.opts.MaxNodeSize,
	})
}

func (t *Tree) fetch(ctx context.Context, store *nodestore.Store, id uint64) (*nodestore.Node, error) {
	n, err := store.GetNode(ctx, id)
	if err == nil && t.opts.Metrics != nil {
		t.opts.Metrics.NodeFetches.Inc()
	}
	return n, err
}

func (t *Tree) put(ctx context.Context, store *nodestore.Store, n *nodestore.Node) error {
	err := store.PutNode(ctx, n)
	if err == nil && t.opts.Metrics != nil {
		t.opts.Metrics.NodeWrites.Inc()
	}
	return err
}

// Stats is the observable part of spec.md §3's Tree State: the total
// key count and the tree's current height.
type Stats struct {
	Count  uint64
	Height uint32
}

// Stats reads the tree's current Count and Height without touching any
// node. Returns the zero Stats for a tree that has never been written
// to.
func (t *Tree) Stats(ctx context.Context, tx kvtx.Tx) (Stats, error) {
	store, err := t.store(tx, t.opts.Variant)
	if err != nil {
		return Stats{}, err
	}
	state, err := store.LoadState(ctx, t.opts.Order)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Count: state.Count, Height: state.Height}, nil
}

// Search implements spec.md §4.4's Search: O(log_m N) node fetches,
// returning the payload found at the first node (root-down) whose
// container holds an equal key — per spec.md §9's Open Question (i),
// keys may appear at any level, not only leaves.
func (t *Tree) Search(ctx context.Context, tx kvtx.Tx, key []byte) (bkeys.Payload, bool, error) {
	store, err := t.store(tx, t.opts.Variant)
	if err != nil {
		return 0, false, err
	}
	state, err := store.LoadState(ctx, t.opts.Order)
	if err != nil {
		return 0, false, err
	}
	store.SetVariant(state.Variant)
	if state.RootID == 0 {
		return 0, false, nil
	}

	current := state.RootID
	for {
		node, err := t.fetch(ctx, store, current)
		if err != nil {
			return 0, false, err
		}

		if node.Kind == nodestore.KindLeaf {
			p, ok := node.Container.Get(key)
			return p, ok, nil
		}

		items := collectItems(node.Container)
		i, equal := locate(items, key)
		if equal {
			return items[i].payload, true, nil
		}
		current = node.Children[i]
	}
}
