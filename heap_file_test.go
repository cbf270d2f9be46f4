package godb

import "testing"

// Sequential scan over two pages, in page/slot order.
func TestHeapFileSeqScanTwoPages(t *testing.T) {
	hf, desc := twoIntHeapFile(t)

	page0, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage(0): %v", err)
	}
	tid := NewTID()
	for i := int32(0); i < 10; i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: i}, IntField{Value: i * 10}}}
		if _, err := page0.insertTuple(tup, tid); err != nil {
			t.Fatalf("insertTuple page0 %d: %v", i, err)
		}
	}
	if err := hf.FlushPage(page0); err != nil {
		t.Fatalf("FlushPage(page0): %v", err)
	}

	page1, err := newHeapPage(desc, 1, hf)
	if err != nil {
		t.Fatalf("newHeapPage(1): %v", err)
	}
	for i := int32(0); i < 7; i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 100 + i}, IntField{Value: i}}}
		if _, err := page1.insertTuple(tup, tid); err != nil {
			t.Fatalf("insertTuple page1 %d: %v", i, err)
		}
	}
	if err := hf.FlushPage(page1); err != nil {
		t.Fatalf("FlushPage(page1): %v", err)
	}

	if got := hf.NumPages(); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}

	iter, err := hf.Iterator(tid)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	var got []int32
	for tup, err := iter(); tup != nil; tup, err = iter() {
		if err != nil {
			t.Fatalf("iterating: %v", err)
		}
		got = append(got, tup.Fields[0].(IntField).Value)
	}
	if len(got) != 17 {
		t.Fatalf("expected 17 tuples, got %d", len(got))
	}
	for i := 0; i < 10; i++ {
		if got[i] != int32(i) {
			t.Fatalf("tuple %d: expected a=%d, got %d", i, i, got[i])
		}
	}
	for i := 0; i < 7; i++ {
		if got[10+i] != int32(100+i) {
			t.Fatalf("tuple %d: expected a=%d, got %d", 10+i, 100+i, got[10+i])
		}
	}
}

func TestHeapFileInsertAndDeleteTuple(t *testing.T) {
	hf, desc := twoIntHeapFile(t)
	tid := NewTID()

	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, IntField{Value: 2}}}
	pages, err := hf.InsertTuple(tup, tid)
	if err != nil {
		t.Fatalf("InsertTuple: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 dirtied page, got %d", len(pages))
	}
	if tup.Rid == nil {
		t.Fatalf("expected tuple to have a RecordID after insert")
	}

	if _, err := hf.DeleteTuple(tup, tid); err != nil {
		t.Fatalf("DeleteTuple: %v", err)
	}

	iter, err := hf.Iterator(tid)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	got, err := iter()
	if err != nil {
		t.Fatalf("iterating: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no tuples after delete, got %+v", got)
	}
}
