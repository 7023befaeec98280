package nodestore

import "errors"

// ErrCorruptTree signals a structural invariant violated on a read path:
// a referenced node id is missing, or a node's stored kind/variant tag is
// inconsistent with what the caller expected. Fatal to the enclosing
// operation; the core never retries.
var ErrCorruptTree = errors.New("nodestore: corrupt tree")

// ErrNodeTooLarge signals a serialized node exceeded the KV backend's
// value size limit after a mutation. Fatal to the insertion; the caller
// may lower the B-tree order.
var ErrNodeTooLarge = errors.New("nodestore: node too large")
