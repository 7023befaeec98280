// Package pending buffers one transaction's not-yet-committed writes in
// ascending key order.
//
// A transaction's pending set never outlives that one transaction, never
// splits across node boundaries, and is never persisted — it is folded
// into the committed store on Commit and thrown away on Rollback or
// Reset. That is a far narrower job than a page-splitting B-tree: a flat
// sorted slice with binary-search insertion is the right size for it.
//
// Not safe for concurrent use by multiple goroutines.
package pending

import (
	"bytes"
	"sort"
)

type entry struct {
	key       []byte
	val       []byte
	tombstone bool
}

// Pending is an ascending-key buffer of writes. The zero value is ready
// to use.
type Pending struct {
	items []entry
}

// Reset discards all buffered writes.
func (p *Pending) Reset() {
	p.items = p.items[:0]
}

// Empty reports whether any writes are buffered.
func (p *Pending) Empty() bool {
	return len(p.items) == 0
}

// find returns the index of key in p.items, or its insertion point and
// false if absent.
func (p *Pending) find(key []byte) (int, bool) {
	i := sort.Search(len(p.items), func(i int) bool {
		return bytes.Compare(p.items[i].key, key) >= 0
	})
	if i < len(p.items) && bytes.Equal(p.items[i].key, key) {
		return i, true
	}
	return i, false
}

// Set buffers an insert or update for key. A nil val buffers a deletion
// (a tombstone) rather than removing key from the buffer — the caller
// must still see that key was touched in this transaction. Set copies
// key and val; the caller may reuse or discard its slices afterward.
func (p *Pending) Set(key, val []byte) {
	e := entry{key: append([]byte(nil), key...), tombstone: val == nil}
	if val != nil {
		e.val = append([]byte(nil), val...)
	}

	i, found := p.find(key)
	if found {
		p.items[i] = e
		return
	}

	p.items = append(p.items, entry{})
	copy(p.items[i+1:], p.items[i:len(p.items)-1])
	p.items[i] = e
}

// Get looks up a buffered write for key. found is false when key has no
// buffered write at all; when found is true and val is nil, the
// buffered write is a deletion.
func (p *Pending) Get(key []byte) (val []byte, found bool) {
	i, found := p.find(key)
	if !found {
		return nil, false
	}
	if p.items[i].tombstone {
		return nil, true
	}
	return p.items[i].val, true
}

// Items iterates all buffered writes in ascending key order, including
// tombstones (val == nil).
func (p *Pending) Items(yield func(key, val []byte) bool) {
	for _, e := range p.items {
		var v []byte
		if !e.tombstone {
			v = e.val
		}
		if !yield(e.key, v) {
			return
		}
	}
}
