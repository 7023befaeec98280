package nodestore

import (
	"context"
	"fmt"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/kvtx"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	stateDiscriminator byte = 0x01
	nodeDiscriminator  byte = 0x02
)

// KeyProvider supplies the scope byte prefix under which one B-tree
// instance's state and nodes are persisted (spec.md's Key Provider,
// GLOSSARY).
type KeyProvider interface {
	Scope() []byte
}

// Options configures a Store. CacheSize <= 0 is treated as an LRU of
// size 1 (golang-lru requires a positive size); Logger defaults to a
// no-op logger.
type Options struct {
	CacheSize int
	Logger    *zap.Logger

	// MaxValueSize bounds one serialized node's byte length; <= 0 means
	// unbounded. PutNode fails with ErrNodeTooLarge past this limit,
	// matching spec.md §4.4's NodeTooLarge failure mode (a single node
	// exceeding the KV back-end's value size limit).
	MaxValueSize int
}

// Store implements C3, the Node Store: maps node id -> serialized node
// blob over a kvtx.Tx, allocates ids, and caches decoded nodes read
// through it. One Store's cache and dirty set are scoped to its own
// lifetime; callers that want that scope to match one transaction must
// open exactly one Store per transaction and reuse it across calls
// (btree.Tree does not — see the Tree type's doc comment — since
// kvtx.Tx has no lifecycle hook a caller can use to know when to let a
// longer-lived Store go). Either way, spec.md's "nodes discarded with
// the transaction" holds: a cache miss always falls back to tx.Get.
type Store struct {
	tx      kvtx.Tx
	scope   []byte
	variant bkeys.Variant
	cache   *lru.Cache[uint64, *Node]
	dirty   map[uint64]*Node
	log     *zap.Logger
	maxSize int
}

// Open binds a Store to tx, scoped under provider, decoding node
// containers as variant (the variant recorded in the tree's State).
func Open(tx kvtx.Tx, provider KeyProvider, variant bkeys.Variant, opts Options) (*Store, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[uint64, *Node](size)
	if err != nil {
		return nil, fmt.Errorf("nodestore: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		tx:      tx,
		scope:   provider.Scope(),
		variant: variant,
		cache:   cache,
		dirty:   make(map[uint64]*Node),
		log:     logger,
		maxSize: opts.MaxValueSize,
	}, nil
}

// SetVariant updates which bkeys.Variant GetNode decodes node containers
// as. Callers typically open a Store with a tentative variant, call
// LoadState, then SetVariant(state.Variant) once the tree's actual
// persisted variant choice is known. For a tree being created for the
// first time LoadState reports the tentative variant, so the two only
// differ for an existing tree persisted with another variant.
func (s *Store) SetVariant(v bkeys.Variant) {
	s.variant = v
}

func (s *Store) stateKey() []byte {
	return append(append([]byte(nil), s.scope...), stateDiscriminator)
}

func (s *Store) nodeKey(id uint64) []byte {
	key := append([]byte(nil), s.scope...)
	key = append(key, nodeDiscriminator)
	var tmp [8]byte
	be := tmp[:]
	for i := 7; i >= 0; i-- {
		be[i] = byte(id)
		id >>= 8
	}
	return append(key, be...)
}

// LoadState reads the tree's persisted State, or constructs a fresh one
// (per spec.md's Lifecycle: "created when its State record is first
// written") if none exists yet.
func (s *Store) LoadState(ctx context.Context, defaultOrder uint32) (*State, error) {
	raw, err := s.tx.Get(ctx, s.stateKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kvtx.ErrTxFailed, err)
	}
	if raw == nil {
		return Empty(defaultOrder, s.variant), nil
	}
	return deserializeState(raw)
}

// SaveState persists state, written at most once per public B-tree
// operation per spec.md §5.
func (s *Store) SaveState(ctx context.Context, state *State) error {
	if err := s.tx.Set(ctx, s.stateKey(), state.serialize()); err != nil {
		return fmt.Errorf("%w: %v", kvtx.ErrTxFailed, err)
	}
	return nil
}

// NewID allocates the next node id from state, post-incrementing it.
func (s *Store) NewID(state *State) uint64 {
	id := state.NextID
	state.NextID++
	s.log.Debug("nodestore: allocated node id", zap.Uint64("id", id))
	return id
}

// GetNode fetches and decodes node id, preferring this transaction's own
// dirty copy, then the decode cache, then the KV backend. A missing id is
// ErrCorruptTree: a structural impossibility on a read path.
func (s *Store) GetNode(ctx context.Context, id uint64) (*Node, error) {
	if n, ok := s.dirty[id]; ok {
		return n, nil
	}
	if n, ok := s.cache.Get(id); ok {
		return n, nil
	}

	raw, err := s.tx.Get(ctx, s.nodeKey(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kvtx.ErrTxFailed, err)
	}
	if raw == nil {
		s.log.Warn("nodestore: missing node during traversal", zap.Uint64("id", id))
		return nil, fmt.Errorf("%w: node %d not found", ErrCorruptTree, id)
	}

	node, err := deserializeNode(id, s.variant, raw)
	if err != nil {
		s.log.Warn("nodestore: corrupt node", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.Add(id, node)
	return node, nil
}

// PutNode serializes and writes node within this transaction, marking it
// dirty so subsequent GetNode calls in the same transaction observe the
// write immediately (the node's Loaded -> Dirty -> Flushed transition).
func (s *Store) PutNode(ctx context.Context, node *Node) error {
	data := node.serialize()
	if s.maxSize > 0 && len(data) > s.maxSize {
		return fmt.Errorf("%w: node %d serializes to %d bytes, limit %d", ErrNodeTooLarge, node.ID, len(data), s.maxSize)
	}
	if err := s.tx.Set(ctx, s.nodeKey(node.ID), data); err != nil {
		return fmt.Errorf("%w: %v", kvtx.ErrTxFailed, err)
	}
	s.dirty[node.ID] = node
	s.cache.Add(node.ID, node)
	return nil
}
