package bkeys

// FstKeys is an immutable, array-backed ordered (key -> payload) table
// standing in for a minimal finite-state transducer built from sorted
// input. Because a real FST is not directly mutable, every mutation here
// follows spec.md §4.3's prescribed shape exactly: decode to an ordered
// sequence, apply the edit, rebuild. That rebuild costs more per
// insertion than TrieKeys but yields the smaller footprint and faster
// bulk membership testing FstKeys is chosen for.
//
// No library in the retrieval pack models an FST/vellum-style structure
// for any language (checked against every go.mod under _examples and
// other_examples/manifests); per the project's "never fabricate
// dependencies" rule this is built directly on the standard library
// rather than stubbed behind a fake import — see DESIGN.md.
type FstKeys struct {
	items []kv // sorted ascending by key, rebuilt on every mutation
}

func newFstKeys() *FstKeys {
	return &FstKeys{}
}

var _ Container = (*FstKeys)(nil)

func (f *FstKeys) Len() int { return len(f.items) }

func (f *FstKeys) Contains(key []byte) bool {
	_, ok := findKey(f.items, key)
	return ok
}

func (f *FstKeys) Get(key []byte) (Payload, bool) {
	i, ok := findKey(f.items, key)
	if !ok {
		return 0, false
	}
	return f.items[i].payload, true
}

// Insert rebuilds the backing array with key inserted or updated in
// place, preserving ascending order.
func (f *FstKeys) Insert(key []byte, payload Payload) {
	i, ok := findKey(f.items, key)
	if ok {
		rebuilt := make([]kv, len(f.items))
		copy(rebuilt, f.items)
		rebuilt[i].payload = payload
		f.items = rebuilt
		return
	}
	rebuilt := make([]kv, 0, len(f.items)+1)
	rebuilt = append(rebuilt, f.items[:i]...)
	rebuilt = append(rebuilt, kv{key: append([]byte(nil), key...), payload: payload})
	rebuilt = append(rebuilt, f.items[i:]...)
	f.items = rebuilt
}

// Remove rebuilds the backing array without key, if present. Reserved
// shape per spec.md §9; not wired into any mutating B-tree operation.
func (f *FstKeys) Remove(key []byte) (Payload, bool) {
	i, ok := findKey(f.items, key)
	if !ok {
		return 0, false
	}
	p := f.items[i].payload
	rebuilt := make([]kv, 0, len(f.items)-1)
	rebuilt = append(rebuilt, f.items[:i]...)
	rebuilt = append(rebuilt, f.items[i+1:]...)
	f.items = rebuilt
	return p, true
}

func (f *FstKeys) SplitAtMedian() (Container, []byte, Payload, Container) {
	left, median, right := splitMedian(f.items)

	lf := &FstKeys{items: append([]kv(nil), left...)}
	rf := &FstKeys{items: append([]kv(nil), right...)}
	return lf, median.key, median.payload, rf
}

func (f *FstKeys) IterOrdered(yield func(key []byte, payload Payload) bool) {
	for _, it := range f.items {
		if !yield(it.key, it.payload) {
			return
		}
	}
}

func (f *FstKeys) Serialize() []byte {
	return encodeItems(f.items)
}
