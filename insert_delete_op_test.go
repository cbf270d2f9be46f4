package godb

import "testing"

// sliceOperator emits a fixed slice of tuples, for feeding Insert/Delete in
// tests without a real scan underneath.
type sliceOperator struct {
	base baseOperator
	desc *TupleDesc
	rows []*Tuple
}

func newSliceOperator(desc *TupleDesc, rows []*Tuple) *sliceOperator {
	s := &sliceOperator{desc: desc, rows: rows}
	s.base.openImpl = s.openImpl
	s.base.closeImpl = s.Close
	return s
}

func (s *sliceOperator) Descriptor() *TupleDesc { return s.desc }

func (s *sliceOperator) openImpl(tid TransactionID) (fetchFunc, error) {
	i := 0
	return func() (*Tuple, error) {
		if i >= len(s.rows) {
			return nil, nil
		}
		t := s.rows[i]
		i++
		return t, nil
	}, nil
}

func (s *sliceOperator) Open(tid TransactionID) error   { return s.base.open(tid) }
func (s *sliceOperator) HasNext() (bool, error)         { return s.base.hasNext() }
func (s *sliceOperator) Next() (*Tuple, error)          { return s.base.next() }
func (s *sliceOperator) Close() error                   { return s.base.close() }
func (s *sliceOperator) Rewind(tid TransactionID) error { return s.base.rewind(tid) }

func TestInsertOperator(t *testing.T) {
	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	desc := intIntDesc()
	hf, err := NewHeapFile(t.TempDir()+"/t.dat", &desc, bp)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	rows := []*Tuple{
		{Desc: desc, Fields: []DBValue{IntField{Value: 1}, IntField{Value: 2}}},
		{Desc: desc, Fields: []DBValue{IntField{Value: 3}, IntField{Value: 4}}},
	}
	src := newSliceOperator(&desc, rows)
	ins := NewInsert(bp, hf, src)

	tid := NewTID()
	if err := ins.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ins.Close()

	has, err := ins.HasNext()
	if err != nil || !has {
		t.Fatalf("expected a result tuple, has=%v err=%v", has, err)
	}
	result, err := ins.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result.Fields[0].(IntField).Value != 2 {
		t.Fatalf("expected count 2, got %+v", result.Fields[0])
	}

	iter, err := hf.Iterator(tid)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	count := 0
	for tup, err := iter(); tup != nil; tup, err = iter() {
		if err != nil {
			t.Fatalf("iterating: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 tuples inserted, got %d", count)
	}
}

func TestDeleteOperator(t *testing.T) {
	_, hf, desc := tableWithRows(t, [][2]int32{{1, 10}, {2, 20}})
	tid := NewTID()

	iter, err := hf.Iterator(tid)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	var toDelete []*Tuple
	for tup, err := iter(); tup != nil; tup, err = iter() {
		if err != nil {
			t.Fatalf("iterating: %v", err)
		}
		toDelete = append(toDelete, tup)
	}

	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	src := newSliceOperator(desc, toDelete)
	del := NewDelete(bp, hf, src)
	if err := del.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer del.Close()

	has, err := del.HasNext()
	if err != nil || !has {
		t.Fatalf("expected a result tuple, has=%v err=%v", has, err)
	}
	result, err := del.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result.Fields[0].(IntField).Value != 2 {
		t.Fatalf("expected count 2, got %+v", result.Fields[0])
	}

	iter2, err := hf.Iterator(tid)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	tup, err := iter2()
	if err != nil {
		t.Fatalf("iterating: %v", err)
	}
	if tup != nil {
		t.Fatalf("expected no tuples remaining, got %+v", tup)
	}
}
