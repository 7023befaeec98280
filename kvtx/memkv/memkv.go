// Package memkv is an in-process reference implementation of kvtx.Tx,
// grounded on the teacher's kv/tx.go "pending changes over a snapshot"
// shape. Committed data lives in a github.com/google/btree.BTreeG ordered
// map; each transaction clones that map (an O(1) copy-on-write clone) to
// get a stable snapshot, and buffers its own writes in an
// internal/pending set until Commit folds them back in.
package memkv

import (
	"bytes"

	"github.com/google/btree"
)

type record struct {
	key, val []byte
}

func less(a, b record) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// DB is the committed key space shared by every transaction opened
// against it. The zero value is not usable; use New.
type DB struct {
	data *btree.BTreeG[record]
}

// New creates an empty DB.
func New() *DB {
	return &DB{data: btree.NewG(32, less)}
}

// Begin opens a new transaction. Read-only transactions observe exactly
// the committed state at the moment Begin is called, even if other
// transactions commit afterward (S4): the snapshot is a clone taken once,
// up front.
func (db *DB) Begin(writable bool) *Tx {
	return &Tx{
		db:       db,
		snapshot: db.data.Clone(),
		writable: writable,
	}
}
