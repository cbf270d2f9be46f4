package godb

// Operator is the uniform pull-based contract every node in the execution
// pipeline implements: an explicit open/has_next/next/close/rewind state
// machine, so AlreadyOpenError/IteratorNotOpenError have somewhere to
// surface from.
type Operator interface {
	Descriptor() *TupleDesc
	Open(tid TransactionID) error
	HasNext() (bool, error)
	Next() (*Tuple, error)
	Close() error
	Rewind(tid TransactionID) error
}

// fetchFunc returns the next tuple of a stream, or (nil, nil) at end of
// stream.
type fetchFunc func() (*Tuple, error)

// baseOperator implements HasNext/Next/Close/Rewind on top of a
// subclass-supplied openImpl, which must return a fresh fetchFunc each time
// it's called. One tuple of lookahead is buffered to answer HasNext without
// consuming from the stream. closeImpl, if wired by the concrete type's
// constructor to its own Close method, lets rewind close child operators
// too instead of only resetting base state.
type baseOperator struct {
	openImpl  func(tid TransactionID) (fetchFunc, error)
	closeImpl func() error

	isOpen   bool
	tid      TransactionID
	fetch    fetchFunc
	buffered *Tuple
	haveBuf  bool
}

func (b *baseOperator) open(tid TransactionID) error {
	if b.isOpen {
		return GoDBError{AlreadyOpenError, "operator is already open"}
	}
	fetch, err := b.openImpl(tid)
	if err != nil {
		return err
	}
	b.fetch = fetch
	b.tid = tid
	b.isOpen = true
	b.haveBuf = false
	b.buffered = nil
	return nil
}

func (b *baseOperator) hasNext() (bool, error) {
	if !b.isOpen {
		return false, nil
	}
	if b.haveBuf {
		return b.buffered != nil, nil
	}
	t, err := b.fetch()
	if err != nil {
		return false, err
	}
	b.buffered = t
	b.haveBuf = true
	return t != nil, nil
}

func (b *baseOperator) next() (*Tuple, error) {
	if !b.isOpen {
		return nil, GoDBError{IteratorNotOpenError, "operator is not open"}
	}
	if !b.haveBuf {
		t, err := b.fetch()
		if err != nil {
			return nil, err
		}
		b.buffered = t
		b.haveBuf = true
	}
	if b.buffered == nil {
		return nil, GoDBError{NoSuchElementError, "no more tuples"}
	}
	t := b.buffered
	b.buffered = nil
	b.haveBuf = false
	return t, nil
}

func (b *baseOperator) close() error {
	b.isOpen = false
	b.fetch = nil
	b.buffered = nil
	b.haveBuf = false
	return nil
}

func (b *baseOperator) rewind(tid TransactionID) error {
	if b.isOpen {
		var err error
		if b.closeImpl != nil {
			err = b.closeImpl()
		} else {
			err = b.close()
		}
		if err != nil {
			return err
		}
	}
	return b.open(tid)
}
