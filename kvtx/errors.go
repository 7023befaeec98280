package kvtx

import "errors"

// ErrTxFailed is returned when the enclosing KV transaction itself fails
// (conflict, abort, I/O) rather than the operation being attempted.
// Propagated verbatim; callers decide whether to retry the outer
// transaction.
var ErrTxFailed = errors.New("kvtx: transaction failed")

// ErrReadOnly is returned by Set/Delete on a Tx opened without write
// permission.
var ErrReadOnly = errors.New("kvtx: transaction is read-only")
