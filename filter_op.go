package godb

// Predicate is a single-sided comparison against a constant, applied to one
// field of a tuple: filter(t) := t.field(fieldIndex).compare(op, operand).
type Predicate struct {
	FieldIndex int
	Op         BoolOp
	Operand    DBValue
}

func (p *Predicate) filter(t *Tuple) bool {
	return t.Fields[p.FieldIndex].Compare(p.Op, p.Operand)
}

// Filter emits only the tuples of child for which pred holds.
type Filter struct {
	base baseOperator

	pred  *Predicate
	child Operator
}

// NewFilter constructs a filter operator.
func NewFilter(pred *Predicate, child Operator) *Filter {
	f := &Filter{pred: pred, child: child}
	f.base.openImpl = f.openImpl
	f.base.closeImpl = f.Close
	return f
}

func (f *Filter) Descriptor() *TupleDesc { return f.child.Descriptor() }

func (f *Filter) openImpl(tid TransactionID) (fetchFunc, error) {
	if err := f.child.Open(tid); err != nil {
		return nil, err
	}
	return func() (*Tuple, error) {
		for {
			has, err := f.child.HasNext()
			if err != nil || !has {
				return nil, err
			}
			t, err := f.child.Next()
			if err != nil {
				return nil, err
			}
			if f.pred.filter(t) {
				return t, nil
			}
		}
	}, nil
}

func (f *Filter) Open(tid TransactionID) error { return f.base.open(tid) }
func (f *Filter) HasNext() (bool, error)       { return f.base.hasNext() }
func (f *Filter) Next() (*Tuple, error)        { return f.base.next() }
func (f *Filter) Close() error {
	if f.child != nil {
		f.child.Close()
	}
	return f.base.close()
}
func (f *Filter) Rewind(tid TransactionID) error { return f.base.rewind(tid) }
