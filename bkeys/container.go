// Package bkeys implements the polymorphic in-node Key Container (C4):
// the (key -> payload) mapping held by one B-tree node, with two
// interchangeable representations, TrieKeys and FstKeys, sharing one
// observable contract.
package bkeys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// Payload is the opaque 64-bit value (the "row id") stored alongside a key.
type Payload = uint64

// Variant identifies which Container implementation a serialized node
// uses, recorded in the B-tree's persisted State header so deserializing a
// node knows which concrete type to construct (spec.md §9: the choice is
// fixed per tree instance, never dispatched on hidden global state).
type Variant byte

const (
	VariantTrie Variant = 1
	VariantFst  Variant = 2
)

func (v Variant) String() string {
	switch v {
	case VariantTrie:
		return "trie"
	case VariantFst:
		return "fst"
	default:
		return fmt.Sprintf("bkeys.Variant(%d)", byte(v))
	}
}

// Container is one node's (key -> payload) mapping. Keys are unique
// within a container; IterOrdered visits them in strictly ascending
// order; serialize-then-deserialize round-trips the (key,payload)
// multiset exactly.
type Container interface {
	Len() int
	Contains(key []byte) bool
	Get(key []byte) (Payload, bool)

	// Insert replaces an existing entry's payload, or adds a new one.
	Insert(key []byte, payload Payload)

	// Remove deletes key if present, returning its payload. The shape is
	// reserved for future split/merge bookkeeping per spec.md §9; it is
	// not wired into any mutating B-tree operation.
	Remove(key []byte) (Payload, bool)

	// SplitAtMedian partitions the container into two whose key counts
	// differ by at most one (the right side is the larger one when the
	// total count is even), returning the middle pair as the promoted
	// separator.
	SplitAtMedian() (left Container, medianKey []byte, medianPayload Payload, right Container)

	IterOrdered(yield func(key []byte, payload Payload) bool)

	Serialize() []byte
}

// New constructs an empty Container of the given variant.
func New(variant Variant) (Container, error) {
	switch variant {
	case VariantTrie:
		return newTrieKeys(), nil
	case VariantFst:
		return newFstKeys(), nil
	default:
		return nil, fmt.Errorf("bkeys: unknown variant %d", byte(variant))
	}
}

// Deserialize reconstructs a Container of the given variant from bytes
// produced by an earlier Serialize call.
func Deserialize(variant Variant, data []byte) (Container, error) {
	items, err := decodeItems(data)
	if err != nil {
		return nil, err
	}
	switch variant {
	case VariantTrie:
		t := newTrieKeys()
		for _, it := range items {
			t.Insert(it.key, it.payload)
		}
		return t, nil
	case VariantFst:
		f := newFstKeys()
		f.items = items
		return f, nil
	default:
		return nil, fmt.Errorf("bkeys: unknown variant %d", byte(variant))
	}
}

type kv struct {
	key     []byte
	payload Payload
}

// encodeItems is the shared on-disk shape for both variants: a
// varint-prefixed count, then for each entry a varint key length, the raw
// key bytes, and an 8-byte big-endian payload. Both variants reduce to an
// ordered (key,payload) sequence, so they share one encoding.
func encodeItems(items []kv) []byte {
	buf := make([]byte, 0, 16*len(items)+binary.MaxVarintLen64)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(items)))
	buf = append(buf, tmp[:n]...)
	for _, it := range items {
		n = binary.PutUvarint(tmp[:], uint64(len(it.key)))
		buf = append(buf, tmp[:n]...)
		buf = append(buf, it.key...)
		var p [8]byte
		binary.BigEndian.PutUint64(p[:], it.payload)
		buf = append(buf, p[:]...)
	}
	return buf
}

func decodeItems(data []byte) ([]kv, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("bkeys: corrupt container header")
	}
	data = data[n:]
	items := make([]kv, 0, count)
	for i := uint64(0); i < count; i++ {
		klen, n := binary.Uvarint(data)
		if n <= 0 || uint64(len(data)) < uint64(n)+klen+8 {
			return nil, fmt.Errorf("bkeys: corrupt container entry %d", i)
		}
		data = data[n:]
		key := append([]byte(nil), data[:klen]...)
		data = data[klen:]
		payload := binary.BigEndian.Uint64(data[:8])
		data = data[8:]
		items = append(items, kv{key: key, payload: payload})
	}
	return items, nil
}

// findKey returns the index of key in a key-ascending items slice, or the
// insertion point and false if absent.
func findKey(items []kv, key []byte) (int, bool) {
	i := sort.Search(len(items), func(i int) bool {
		return bytes.Compare(items[i].key, key) >= 0
	})
	if i < len(items) && bytes.Equal(items[i].key, key) {
		return i, true
	}
	return i, false
}

// MedianIndex applies spec.md §4.3's split_at_median rule uniformly:
// index (n-1)/2 leaves the right half the larger one whenever n is even,
// and an equal split whenever n is odd. Exported so btree can split a
// node's Children slice congruently with how its Container splits.
func MedianIndex(n int) int {
	return (n - 1) / 2
}

func splitMedian(items []kv) (left []kv, median kv, right []kv) {
	mi := MedianIndex(len(items))
	left = items[:mi]
	median = items[mi]
	right = items[mi+1:]
	return
}
