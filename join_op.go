package godb

import "golang.org/x/exp/slices"

// JoinPredicate compares one field of a left-side tuple against one field
// of a right-side tuple: filter(l, r) := l.field(leftIndex).compare(op, r.field(rightIndex)).
type JoinPredicate struct {
	LeftIndex  int
	Op         BoolOp
	RightIndex int
}

func (p *JoinPredicate) filter(l, r *Tuple) bool {
	return l.Fields[p.LeftIndex].Compare(p.Op, r.Fields[p.RightIndex])
}

// EquiJoin is a blocking sort-merge equi-join of left and right on pred.
type EquiJoin struct {
	base baseOperator

	left, right Operator
	pred        *JoinPredicate
	desc        *TupleDesc
}

// NewEquiJoin constructs a sort-merge equi-join. pred.Op must be OpEq: only
// equality supports the sort-merge strategy.
func NewEquiJoin(left, right Operator, pred *JoinPredicate) *EquiJoin {
	j := &EquiJoin{
		left:  left,
		right: right,
		pred:  pred,
		desc:  left.Descriptor().Merge(right.Descriptor()),
	}
	j.base.openImpl = j.openImpl
	j.base.closeImpl = j.Close
	return j
}

func (j *EquiJoin) Descriptor() *TupleDesc { return j.desc }

func (j *EquiJoin) openImpl(tid TransactionID) (fetchFunc, error) {
	leftTuples, err := drainAll(j.left, tid)
	if err != nil {
		return nil, err
	}
	rightTuples, err := drainAll(j.right, tid)
	if err != nil {
		return nil, err
	}

	sortByIndex(leftTuples, j.pred.LeftIndex)
	sortByIndex(rightTuples, j.pred.RightIndex)

	joined := mergeJoin(leftTuples, rightTuples, j.pred)
	i := 0
	return func() (*Tuple, error) {
		if i >= len(joined) {
			return nil, nil
		}
		t := joined[i]
		i++
		return t, nil
	}, nil
}

func (j *EquiJoin) Open(tid TransactionID) error { return j.base.open(tid) }
func (j *EquiJoin) HasNext() (bool, error)       { return j.base.hasNext() }
func (j *EquiJoin) Next() (*Tuple, error)        { return j.base.next() }
func (j *EquiJoin) Close() error {
	if j.left != nil {
		j.left.Close()
	}
	if j.right != nil {
		j.right.Close()
	}
	return j.base.close()
}
func (j *EquiJoin) Rewind(tid TransactionID) error { return j.base.rewind(tid) }

func drainAll(op Operator, tid TransactionID) ([]*Tuple, error) {
	if err := op.Open(tid); err != nil {
		return nil, err
	}
	var out []*Tuple
	for {
		has, err := op.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := op.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func sortByIndex(tuples []*Tuple, idx int) {
	slices.SortFunc(tuples, func(a, b *Tuple) int {
		switch compareField(a, b, idx) {
		case orderLess:
			return -1
		case orderGreater:
			return 1
		default:
			return 0
		}
	})
}

func mergeJoin(left, right []*Tuple, pred *JoinPredicate) []*Tuple {
	var out []*Tuple
	li, ri := 0, 0
	for li < len(left) && ri < len(right) {
		lv := left[li].Fields[pred.LeftIndex]
		rv := right[ri].Fields[pred.RightIndex]
		switch {
		case lv.Compare(OpLt, rv):
			li++
		case rv.Compare(OpLt, lv):
			ri++
		default:
			lEnd := li
			for lEnd < len(left) && left[lEnd].Fields[pred.LeftIndex].Compare(OpEq, lv) {
				lEnd++
			}
			rEnd := ri
			for rEnd < len(right) && right[rEnd].Fields[pred.RightIndex].Compare(OpEq, rv) {
				rEnd++
			}
			for i := li; i < lEnd; i++ {
				for k := ri; k < rEnd; k++ {
					if pred.filter(left[i], right[k]) {
						out = append(out, joinTuples(left[i], right[k]))
					}
				}
			}
			li, ri = lEnd, rEnd
		}
	}
	return out
}
