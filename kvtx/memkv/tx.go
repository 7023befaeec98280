package memkv

import (
	"bytes"
	"context"
	"iter"

	"github.com/dacapoday/idxkv/internal/pending"
	"github.com/dacapoday/idxkv/kvtx"
	"github.com/google/btree"
)

// Tx is a kvtx.Tx bound to one snapshot of a DB, plus a buffer of writes
// not yet folded back into it. Not safe for concurrent use.
type Tx struct {
	db       *DB
	snapshot *btree.BTreeG[record]
	pending  pending.Pending
	writable bool
	done     bool
}

var _ kvtx.Tx = (*Tx)(nil)

func (tx *Tx) Writable() bool { return tx.writable }

// Get returns the buffered value for key if one was written in this
// transaction (including a buffered deletion, which reads as absent),
// otherwise falls back to the transaction's snapshot.
func (tx *Tx) Get(ctx context.Context, key []byte) ([]byte, error) {
	if v, found := tx.pending.Get(key); found {
		if v == nil {
			return nil, nil
		}
		return v, nil
	}
	if rec, ok := tx.snapshot.Get(record{key: key}); ok {
		return rec.val, nil
	}
	return nil, nil
}

// Set buffers an insert or update. Folded into the DB on Commit.
func (tx *Tx) Set(ctx context.Context, key, value []byte) error {
	if !tx.writable {
		return kvtx.ErrReadOnly
	}
	tx.pending.Set(append([]byte(nil), key...), append([]byte(nil), value...))
	return nil
}

// Delete buffers a tombstone. Folded into the DB on Commit.
func (tx *Tx) Delete(ctx context.Context, key []byte) error {
	if !tx.writable {
		return kvtx.ErrReadOnly
	}
	tx.pending.Set(append([]byte(nil), key...), nil)
	return nil
}

// Scan returns pending writes merged over the snapshot for keys in
// [lo, hi), pending writes taking precedence and tombstones suppressing
// their snapshot counterpart.
func (tx *Tx) Scan(ctx context.Context, lo, hi []byte, limit int) (iter.Seq2[[]byte, []byte], error) {
	var base []record
	tx.snapshot.AscendRange(record{key: lo}, record{key: hi}, func(r record) bool {
		base = append(base, r)
		return true
	})

	var over []record
	it := tx.pending.Iter()
	if it.Seek(lo) {
		for it.Valid() && bytes.Compare(it.Key(), hi) < 0 {
			k := append([]byte(nil), it.Key()...)
			v := it.Val()
			if v != nil {
				v = append([]byte(nil), v...)
			}
			over = append(over, record{key: k, val: v})
			if !it.Next() {
				break
			}
		}
	}

	merged := mergeOverlay(base, over)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return func(yield func([]byte, []byte) bool) {
		for _, r := range merged {
			if !yield(r.key, r.val) {
				return
			}
		}
	}, nil
}

// mergeOverlay merges two key-ascending runs, over taking precedence on
// equal keys, dropping tombstones (val == nil) from the result.
func mergeOverlay(base, over []record) []record {
	out := make([]record, 0, len(base)+len(over))
	i, j := 0, 0
	for i < len(base) && j < len(over) {
		c := bytes.Compare(base[i].key, over[j].key)
		switch {
		case c < 0:
			out = append(out, base[i])
			i++
		case c > 0:
			if over[j].val != nil {
				out = append(out, over[j])
			}
			j++
		default:
			if over[j].val != nil {
				out = append(out, over[j])
			}
			i++
			j++
		}
	}
	for ; i < len(base); i++ {
		out = append(out, base[i])
	}
	for ; j < len(over); j++ {
		if over[j].val != nil {
			out = append(out, over[j])
		}
	}
	return out
}

// Commit folds this transaction's buffered writes into the DB's committed
// map. A read-only transaction's Commit is a no-op.
func (tx *Tx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if !tx.writable {
		return nil
	}
	tx.pending.Items(func(key, val []byte) bool {
		if val == nil {
			tx.db.data.Delete(record{key: key})
		} else {
			tx.db.data.ReplaceOrInsert(record{key: key, val: val})
		}
		return true
	})
	return nil
}

// Rollback discards this transaction's buffered writes.
func (tx *Tx) Rollback() error {
	tx.done = true
	tx.pending.Reset()
	return nil
}
