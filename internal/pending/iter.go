package pending

import (
	"bytes"
	"sort"
)

// Iter is a read-only cursor over a Pending snapshot taken at the moment
// Iter was called. It does not observe writes buffered after that point.
type Iter struct {
	items []entry
	idx   int
}

// Iter returns a cursor over p's current contents. Position it with
// SeekFirst, SeekLast, or Seek before reading Key/Val.
func (p *Pending) Iter() *Iter {
	return &Iter{items: append([]entry(nil), p.items...), idx: len(p.items)}
}

// Valid reports whether the cursor is positioned at an entry.
func (it *Iter) Valid() bool {
	return it.idx >= 0 && it.idx < len(it.items)
}

// Key returns the entry at the cursor, or nil if invalid.
func (it *Iter) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.items[it.idx].key
}

// Val returns the buffered value at the cursor, or nil if invalid or a
// tombstone.
func (it *Iter) Val() []byte {
	if !it.Valid() {
		return nil
	}
	e := it.items[it.idx]
	if e.tombstone {
		return nil
	}
	return e.val
}

// Next advances to the next key. Returns false if no more items.
func (it *Iter) Next() bool {
	if it.idx < len(it.items) {
		it.idx++
	}
	return it.Valid()
}

// Prev moves to the previous key. Returns false if no more items.
func (it *Iter) Prev() bool {
	if it.idx > 0 {
		it.idx--
		return it.Valid()
	}
	it.idx = -1
	return false
}

// SeekFirst positions the cursor at the first key. Returns false if empty.
func (it *Iter) SeekFirst() bool {
	it.idx = 0
	return it.Valid()
}

// SeekLast positions the cursor at the last key. Returns false if empty.
func (it *Iter) SeekLast() bool {
	it.idx = len(it.items) - 1
	return it.Valid()
}

// Seek positions the cursor at the first key >= key. Returns false if no
// such key exists.
func (it *Iter) Seek(key []byte) bool {
	it.idx = sort.Search(len(it.items), func(i int) bool {
		return bytes.Compare(it.items[i].key, key) >= 0
	})
	return it.Valid()
}
