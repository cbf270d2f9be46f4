package godb

import "golang.org/x/exp/slices"

// OrderBy performs a blocking in-memory multi-key sort of child's output,
// using golang.org/x/exp/slices.SortFunc with a multi-key comparator.
type OrderBy struct {
	base baseOperator

	fieldIndices []int
	ascending    []bool
	child        Operator
}

// NewOrderBy constructs an order-by operator. ascending[i] selects
// ascending (true) or descending (false) order for fieldIndices[i].
func NewOrderBy(fieldIndices []int, ascending []bool, child Operator) (*OrderBy, error) {
	if len(fieldIndices) != len(ascending) {
		return nil, GoDBError{MalformedDataError, "fieldIndices and ascending must match in length"}
	}
	o := &OrderBy{fieldIndices: fieldIndices, ascending: ascending, child: child}
	o.base.openImpl = o.openImpl
	o.base.closeImpl = o.Close
	return o, nil
}

func (o *OrderBy) Descriptor() *TupleDesc { return o.child.Descriptor() }

func (o *OrderBy) openImpl(tid TransactionID) (fetchFunc, error) {
	tuples, err := drainAll(o.child, tid)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tuples, func(a, b *Tuple) int {
		for k, idx := range o.fieldIndices {
			order := compareField(a, b, idx)
			if order == orderEqual {
				continue
			}
			less := order == orderLess
			if !o.ascending[k] {
				less = !less
			}
			if less {
				return -1
			}
			return 1
		}
		return 0
	})
	i := 0
	return func() (*Tuple, error) {
		if i >= len(tuples) {
			return nil, nil
		}
		t := tuples[i]
		i++
		return t, nil
	}, nil
}

func (o *OrderBy) Open(tid TransactionID) error { return o.base.open(tid) }
func (o *OrderBy) HasNext() (bool, error)       { return o.base.hasNext() }
func (o *OrderBy) Next() (*Tuple, error)        { return o.base.next() }
func (o *OrderBy) Close() error {
	if o.child != nil {
		o.child.Close()
	}
	return o.base.close()
}
func (o *OrderBy) Rewind(tid TransactionID) error { return o.base.rewind(tid) }
