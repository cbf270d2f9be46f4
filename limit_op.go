package godb

// Limit caps child's output to its first n tuples.
type Limit struct {
	base baseOperator

	n     int
	child Operator
}

func NewLimit(n int, child Operator) *Limit {
	l := &Limit{n: n, child: child}
	l.base.openImpl = l.openImpl
	l.base.closeImpl = l.Close
	return l
}

func (l *Limit) Descriptor() *TupleDesc { return l.child.Descriptor() }

func (l *Limit) openImpl(tid TransactionID) (fetchFunc, error) {
	if err := l.child.Open(tid); err != nil {
		return nil, err
	}
	count := 0
	return func() (*Tuple, error) {
		if count >= l.n {
			return nil, nil
		}
		has, err := l.child.HasNext()
		if err != nil || !has {
			return nil, err
		}
		t, err := l.child.Next()
		if err != nil {
			return nil, err
		}
		count++
		return t, nil
	}, nil
}

func (l *Limit) Open(tid TransactionID) error { return l.base.open(tid) }
func (l *Limit) HasNext() (bool, error)       { return l.base.hasNext() }
func (l *Limit) Next() (*Tuple, error)        { return l.base.next() }
func (l *Limit) Close() error {
	if l.child != nil {
		l.child.Close()
	}
	return l.base.close()
}
func (l *Limit) Rewind(tid TransactionID) error { return l.base.rewind(tid) }
