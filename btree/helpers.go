package btree

import (
	"bytes"
	"sort"

	"github.com/dacapoday/idxkv/bkeys"
)

type itemRef struct {
	key     []byte
	payload bkeys.Payload
}

func collectItems(c bkeys.Container) []itemRef {
	items := make([]itemRef, 0, c.Len())
	c.IterOrdered(func(key []byte, payload bkeys.Payload) bool {
		items = append(items, itemRef{key: key, payload: payload})
		return true
	})
	return items
}

// locate finds the smallest index i such that key <= items[i].key
// (spec.md §4.4 Search step 2/3). equal reports whether items[i].key ==
// key exactly; otherwise i is also the child index to descend into.
func locate(items []itemRef, key []byte) (i int, equal bool) {
	i = sort.Search(len(items), func(i int) bool {
		return bytes.Compare(key, items[i].key) <= 0
	})
	if i < len(items) && bytes.Equal(items[i].key, key) {
		return i, true
	}
	return i, false
}
