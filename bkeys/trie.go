package bkeys

import "sort"

// TrieKeys is a radix trie over []byte keys carrying a Payload at each
// terminal edge. Insertion is O(|key|) amortized; memory grows with
// shared key prefixes. Chosen for workloads that interleave reads with
// many writes, where FstKeys's rebuild-on-mutation cost would dominate.
//
// Structurally grounded on the teacher's in-memory append-only B-tree
// (btree/node.go's sorted, self-balancing node-append idiom), adapted
// from byte-string keys with child pointers to a byte-edge radix tree
// with a terminal Payload.
type TrieKeys struct {
	root *trieNode
	n    int
}

type trieNode struct {
	prefix     []byte
	hasPayload bool
	payload    Payload
	children   []*trieNode // sorted ascending by children[i].prefix[0]
}

func newTrieKeys() *TrieKeys {
	return &TrieKeys{root: &trieNode{}}
}

var _ Container = (*TrieKeys)(nil)

func (t *TrieKeys) Len() int { return t.n }

func (t *TrieKeys) Contains(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

func (t *TrieKeys) Get(key []byte) (Payload, bool) {
	n := t.root
	for {
		if len(key) == 0 {
			if n.hasPayload {
				return n.payload, true
			}
			return 0, false
		}
		c := n.childFor(key[0])
		if c == nil {
			return 0, false
		}
		cp := commonPrefixLen(c.prefix, key)
		if cp != len(c.prefix) {
			return 0, false
		}
		key = key[cp:]
		n = c
	}
}

func (t *TrieKeys) Insert(key []byte, payload Payload) {
	if t.root.insert(key, payload) {
		t.n++
	}
}

// insert returns true if this inserted a brand-new key (as opposed to
// updating an existing one's payload).
func (n *trieNode) insert(key []byte, payload Payload) bool {
	if len(key) == 0 {
		wasNew := !n.hasPayload
		n.hasPayload = true
		n.payload = payload
		return wasNew
	}

	for i, c := range n.children {
		if c.prefix[0] != key[0] {
			continue
		}
		cp := commonPrefixLen(c.prefix, key)
		if cp == len(c.prefix) {
			return c.insert(key[cp:], payload)
		}
		// Split c at cp: a new intermediate node owns the shared prefix.
		mid := &trieNode{prefix: append([]byte(nil), c.prefix[:cp]...)}
		c.prefix = c.prefix[cp:]
		mid.children = []*trieNode{c}
		n.children[i] = mid
		if cp == len(key) {
			mid.hasPayload = true
			mid.payload = payload
			return true
		}
		leaf := &trieNode{prefix: append([]byte(nil), key[cp:]...), hasPayload: true, payload: payload}
		mid.children = append(mid.children, leaf)
		mid.sortChildren()
		return true
	}

	n.children = append(n.children, &trieNode{
		prefix:     append([]byte(nil), key...),
		hasPayload: true,
		payload:    payload,
	})
	n.sortChildren()
	return true
}

func (n *trieNode) childFor(b byte) *trieNode {
	for _, c := range n.children {
		if c.prefix[0] == b {
			return c
		}
	}
	return nil
}

func (n *trieNode) sortChildren() {
	sort.Slice(n.children, func(i, j int) bool {
		return n.children[i].prefix[0] < n.children[j].prefix[0]
	})
}

// Remove unmarks key's terminal payload if present. The trie's edge
// structure is not compacted afterward; merging collapsed single-child
// nodes is part of the reserved-but-unexercised remove/merge shape
// (spec.md §9).
func (t *TrieKeys) Remove(key []byte) (Payload, bool) {
	n := t.root
	for {
		if len(key) == 0 {
			if !n.hasPayload {
				return 0, false
			}
			p := n.payload
			n.hasPayload = false
			n.payload = 0
			t.n--
			return p, true
		}
		c := n.childFor(key[0])
		if c == nil {
			return 0, false
		}
		cp := commonPrefixLen(c.prefix, key)
		if cp != len(c.prefix) {
			return 0, false
		}
		key = key[cp:]
		n = c
	}
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// IterOrdered visits (key, payload) pairs in ascending key order: a
// node's own key (if any) is emitted before its children, since it is a
// strict prefix of — and therefore lexicographically smaller than —
// every descendant key.
func (t *TrieKeys) IterOrdered(yield func(key []byte, payload Payload) bool) {
	t.root.walk(nil, yield)
}

func (n *trieNode) walk(prefix []byte, yield func(key []byte, payload Payload) bool) bool {
	full := append(append([]byte(nil), prefix...), n.prefix...)
	if n.hasPayload {
		if !yield(full, n.payload) {
			return false
		}
	}
	for _, c := range n.children {
		if !c.walk(full, yield) {
			return false
		}
	}
	return true
}

func (t *TrieKeys) items() []kv {
	items := make([]kv, 0, t.n)
	t.IterOrdered(func(key []byte, payload Payload) bool {
		items = append(items, kv{key: key, payload: payload})
		return true
	})
	return items
}

func (t *TrieKeys) SplitAtMedian() (Container, []byte, Payload, Container) {
	left, median, right := splitMedian(t.items())

	lt := newTrieKeys()
	for _, it := range left {
		lt.Insert(it.key, it.payload)
	}
	rt := newTrieKeys()
	for _, it := range right {
		rt.Insert(it.key, it.payload)
	}
	return lt, median.key, median.payload, rt
}

func (t *TrieKeys) Serialize() []byte {
	return encodeItems(t.items())
}
