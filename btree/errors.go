package btree

import (
	"errors"

	"github.com/dacapoday/idxkv/kvtx"
	"github.com/dacapoday/idxkv/nodestore"
)

// ErrCorruptTree, ErrNodeTooLarge, and ErrTxFailed are re-exported from
// their owning packages so callers of btree need only import one package
// to check spec.md §7's error kinds with errors.Is.
var (
	ErrCorruptTree  = nodestore.ErrCorruptTree
	ErrNodeTooLarge = nodestore.ErrNodeTooLarge
	ErrTxFailed     = kvtx.ErrTxFailed
)

// ErrInvalidKey is returned by Insert for an empty key, whichever Key
// Container variant the tree uses — fatal to the operation.
var ErrInvalidKey = errors.New("btree: invalid key")
