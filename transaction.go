package godb

import (
	"sync/atomic"
)

// TransactionID names a unit of work against the BufferPool. The core engine
// never enforces isolation between transactions (locking and recovery are
// out of scope); TransactionID exists so that Begin/Commit/Abort and
// LogFile have something concrete to key on.
type TransactionID struct {
	id int64
}

var nextTID int64

// NewTID allocates a fresh, process-unique TransactionID.
func NewTID() TransactionID {
	return TransactionID{id: atomic.AddInt64(&nextTID, 1)}
}
