// Package badgerkv adapts a *badger.Txn to the kvtx.Tx contract, grounded
// on shruggr-inspiration/kvstore/badger's Get/Put/Delete shape. It gives
// the engine a realistic persistent backend beyond the in-process memkv
// reference implementation.
package badgerkv

import (
	"bytes"
	"context"
	"errors"
	"iter"

	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dgraph-io/badger/v4"
)

// Tx wraps one Badger transaction. The caller owns txn's lifetime
// (Commit/Discard); Tx only translates reads and writes.
type Tx struct {
	txn      *badger.Txn
	writable bool
}

var _ kvtx.Tx = (*Tx)(nil)

// Wrap adapts an open Badger transaction. writable must match how txn was
// created (db.NewTransaction(true) vs (false)); Badger does not expose
// that flag back once a *badger.Txn exists.
func Wrap(txn *badger.Txn, writable bool) *Tx {
	return &Tx{txn: txn, writable: writable}
}

func (tx *Tx) Writable() bool { return tx.writable }

// Get returns (nil, nil) on a missing key, matching kvtx.Tx's contract
// that NotFound is not an error.
func (tx *Tx) Get(ctx context.Context, key []byte) ([]byte, error) {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(kvtx.ErrTxFailed, err)
	}
	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte(nil), val...)
		return nil
	})
	if err != nil {
		return nil, errors.Join(kvtx.ErrTxFailed, err)
	}
	return value, nil
}

func (tx *Tx) Set(ctx context.Context, key, value []byte) error {
	if !tx.writable {
		return kvtx.ErrReadOnly
	}
	if err := tx.txn.Set(key, value); err != nil {
		return errors.Join(kvtx.ErrTxFailed, err)
	}
	return nil
}

func (tx *Tx) Delete(ctx context.Context, key []byte) error {
	if !tx.writable {
		return kvtx.ErrReadOnly
	}
	if err := tx.txn.Delete(key); err != nil {
		return errors.Join(kvtx.ErrTxFailed, err)
	}
	return nil
}

// Scan iterates [lo, hi) in ascending key order. The underlying Badger
// iterator is opened lazily and closed once the sequence is exhausted or
// the caller stops ranging early.
func (tx *Tx) Scan(ctx context.Context, lo, hi []byte, limit int) (iter.Seq2[[]byte, []byte], error) {
	return func(yield func([]byte, []byte) bool) {
		opts := badger.DefaultIteratorOptions
		it := tx.txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Seek(lo); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if bytes.Compare(key, hi) >= 0 {
				return
			}
			var value []byte
			if err := item.Value(func(val []byte) error {
				value = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return
			}
			if !yield(key, value) {
				return
			}
			count++
			if limit > 0 && count >= limit {
				return
			}
		}
	}, nil
}
