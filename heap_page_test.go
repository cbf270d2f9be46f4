package godb

import (
	"bytes"
	"testing"
)

func twoIntHeapFile(t *testing.T) (*HeapFile, *TupleDesc) {
	t.Helper()
	desc := intIntDesc()
	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	hf, err := NewHeapFile(t.TempDir()+"/t.dat", &desc, bp)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	return hf, &desc
}

// Heap page round trip with an exact 504-slot / 63-byte header layout.
func TestHeapPageRoundTripExactLayout(t *testing.T) {
	hf, desc := twoIntHeapFile(t)
	page, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage: %v", err)
	}

	if got := page.getNumSlots(); got != 504 {
		t.Fatalf("expected 504 slots, got %d", got)
	}
	if got := headerSize(page.getNumSlots()); got != 63 {
		t.Fatalf("expected 63-byte header, got %d", got)
	}

	values := [][2]int32{{1, 2}, {3, 4}, {5, 6}}
	slots := []int{0, 2, 5}
	for i, slot := range slots {
		page.tuples[slot] = &Tuple{
			Desc:   *desc,
			Fields: []DBValue{IntField{Value: values[i][0]}, IntField{Value: values[i][1]}},
			Rid:    &RecordID{PID: page.pid, Slot: slot},
		}
		page.numUsed++
	}

	buf, err := page.toBuffer()
	if err != nil {
		t.Fatalf("toBuffer: %v", err)
	}
	if buf.Len() != PageSize {
		t.Fatalf("expected %d-byte page, got %d", PageSize, buf.Len())
	}

	parsed, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage: %v", err)
	}
	if err := parsed.initFromBuffer(bytes.NewBuffer(buf.Bytes())); err != nil {
		t.Fatalf("initFromBuffer: %v", err)
	}

	iter := parsed.tupleIter()
	for i, slot := range slots {
		tup, err := iter()
		if err != nil {
			t.Fatalf("tupleIter: %v", err)
		}
		if tup == nil {
			t.Fatalf("expected tuple at position %d, got none", i)
		}
		if tup.Fields[0].(IntField).Value != values[i][0] || tup.Fields[1].(IntField).Value != values[i][1] {
			t.Fatalf("tuple %d: expected %v, got %+v", i, values[i], tup.Fields)
		}
		if tup.Rid.PID.PageNo() != page.pid.PageNo() || tup.Rid.Slot != slot {
			t.Fatalf("tuple %d: expected rid (pid,%d), got (pid,%d)", i, slot, tup.Rid.Slot)
		}
	}
	if tup, err := iter(); tup != nil || err != nil {
		t.Fatalf("expected no further tuples, got %+v, %v", tup, err)
	}
}

// Invariant 3: insert_tuple decreases empty slots by exactly one and dirties the page.
func TestHeapPageInsertTupleInvariant(t *testing.T) {
	hf, desc := twoIntHeapFile(t)
	page, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage: %v", err)
	}
	before := page.getNumEmptySlots()
	tid := NewTID()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, IntField{Value: 2}}}
	if _, err := page.insertTuple(tup, tid); err != nil {
		t.Fatalf("insertTuple: %v", err)
	}
	if got := page.getNumEmptySlots(); got != before-1 {
		t.Fatalf("expected %d empty slots, got %d", before-1, got)
	}
	if page.IsDirty() == nil {
		t.Fatalf("expected page to be dirty after insert")
	}
}

// Invariant 4: delete_tuple frees the same slot and dirties the page.
func TestHeapPageDeleteTupleInvariant(t *testing.T) {
	hf, desc := twoIntHeapFile(t)
	page, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage: %v", err)
	}
	tid := NewTID()
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}, IntField{Value: 2}}}
	rid, err := page.insertTuple(tup, tid)
	if err != nil {
		t.Fatalf("insertTuple: %v", err)
	}
	page.SetDirty(tid, false)

	if err := page.deleteTuple(tup, tid); err != nil {
		t.Fatalf("deleteTuple: %v", err)
	}
	if page.isSlotUsed(rid.Slot) {
		t.Fatalf("expected slot %d to be free after delete", rid.Slot)
	}
	if page.IsDirty() == nil {
		t.Fatalf("expected page to be dirty after delete")
	}
}

func TestHeapPageFullError(t *testing.T) {
	hf, desc := twoIntHeapFile(t)
	page, err := newHeapPage(desc, 0, hf)
	if err != nil {
		t.Fatalf("newHeapPage: %v", err)
	}
	tid := NewTID()
	for i := 0; i < page.getNumSlots(); i++ {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}, IntField{Value: int32(i)}}}
		if _, err := page.insertTuple(tup, tid); err != nil {
			t.Fatalf("insertTuple %d: %v", i, err)
		}
	}
	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 0}, IntField{Value: 0}}}
	if _, err := page.insertTuple(tup, tid); !isCode(err, PageFullError) {
		t.Fatalf("expected PageFullError, got %v", err)
	}
}
