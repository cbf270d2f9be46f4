package godb

import (
	"bytes"
)

// HeapPage implements Page for pages of a HeapFile. The on-disk layout is a
// low-bit-first slot bitmap followed by numSlots fixed-size tuple slots,
// zero-padded to PageSize.
type HeapPage struct {
	pid     HeapPageID
	desc    *TupleDesc
	file    *HeapFile
	tuples  []*Tuple // tuples[i] == nil iff slot i is unused
	numUsed int

	dirty *TransactionID
}

// numSlotsForTupleSize returns numSlots = floor((PageSize*8) / (tupleSize*8 + 1)).
func numSlotsForTupleSize(tupleSize int) int {
	return (PageSize * 8) / (tupleSize*8 + 1)
}

func headerSize(numSlots int) int {
	return (numSlots + 7) / 8
}

// newHeapPage constructs an empty HeapPage for pageNo of file f.
func newHeapPage(desc *TupleDesc, pageNo int, f *HeapFile) (*HeapPage, error) {
	numSlots := numSlotsForTupleSize(desc.bytesPerTuple())
	return &HeapPage{
		pid:    NewHeapPageID(f.TableID(), pageNo),
		desc:   desc,
		file:   f,
		tuples: make([]*Tuple, numSlots),
	}, nil
}

func (h *HeapPage) getNumSlots() int {
	return len(h.tuples)
}

// getNumEmptySlots returns the count of header bits equal to 0.
func (h *HeapPage) getNumEmptySlots() int {
	return len(h.tuples) - h.numUsed
}

func (h *HeapPage) isSlotUsed(i int) bool {
	return h.tuples[i] != nil
}

// insertTuple finds the lowest-index unused slot, places t there, and sets
// t's RecordId to (pid, slot). Fails with PageFullError if none is free.
func (h *HeapPage) insertTuple(t *Tuple, tid TransactionID) (RecordID, error) {
	for slot, existing := range h.tuples {
		if existing != nil {
			continue
		}
		rid := RecordID{PID: h.pid, Slot: slot}
		stored := &Tuple{Desc: *h.desc, Fields: t.Fields, Rid: &rid}
		h.tuples[slot] = stored
		h.numUsed++
		t.Rid = &rid
		h.SetDirty(tid, true)
		return rid, nil
	}
	return RecordID{}, GoDBError{PageFullError, "no available slots for tuple insertion"}
}

// deleteTuple removes the tuple at t.Rid. Requires t.Rid.PID == h.pid and
// the slot to be currently used.
func (h *HeapPage) deleteTuple(t *Tuple, tid TransactionID) error {
	if t.Rid == nil {
		return GoDBError{TupleNotFoundError, "tuple has no record id"}
	}
	rid := t.Rid
	if rid.PID.TableID() != h.pid.TableID() || rid.PID.PageNo() != h.pid.PageNo() {
		return GoDBError{TupleNotFoundError, "tuple does not belong to this page"}
	}
	if rid.Slot < 0 || rid.Slot >= len(h.tuples) || h.tuples[rid.Slot] == nil {
		return GoDBError{TupleNotFoundError, "slot is not in use"}
	}
	h.tuples[rid.Slot] = nil
	h.numUsed--
	h.SetDirty(tid, true)
	return nil
}

func (h *HeapPage) IsDirty() *TransactionID {
	return h.dirty
}

func (h *HeapPage) SetDirty(tid TransactionID, dirty bool) {
	if dirty {
		t := tid
		h.dirty = &t
	} else {
		h.dirty = nil
	}
}

func (h *HeapPage) GetFile() DBFile {
	return h.file
}

func (h *HeapPage) ID() PageID {
	return h.pid
}

// toBuffer serializes the page: header bitmap, then numSlots tuple slots
// (zero bytes for unused slots), zero-padded to PageSize.
func (h *HeapPage) toBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	hdr := make([]byte, headerSize(len(h.tuples)))
	for i, t := range h.tuples {
		if t != nil {
			hdr[i/8] |= 1 << uint(i%8)
		}
	}
	if _, err := buf.Write(hdr); err != nil {
		return nil, err
	}
	tupleSize := h.desc.bytesPerTuple()
	for _, t := range h.tuples {
		if t == nil {
			buf.Write(make([]byte, tupleSize))
			continue
		}
		before := buf.Len()
		if err := t.writeTo(buf); err != nil {
			return nil, err
		}
		if written := buf.Len() - before; written < tupleSize {
			buf.Write(make([]byte, tupleSize-written))
		}
	}
	if buf.Len() < PageSize {
		buf.Write(make([]byte, PageSize-buf.Len()))
	}
	return buf, nil
}

// initFromBuffer parses a PageSize-byte buffer into h.
func (h *HeapPage) initFromBuffer(buf *bytes.Buffer) error {
	numSlots := numSlotsForTupleSize(h.desc.bytesPerTuple())
	hdr := make([]byte, headerSize(numSlots))
	if _, err := buf.Read(hdr); err != nil {
		return err
	}
	tupleSize := h.desc.bytesPerTuple()
	h.tuples = make([]*Tuple, numSlots)
	h.numUsed = 0
	for i := 0; i < numSlots; i++ {
		used := hdr[i/8]&(1<<uint(i%8)) != 0
		slotBytes := buf.Next(tupleSize)
		if !used {
			continue
		}
		slotBuf := bytes.NewBuffer(slotBytes)
		tuple, err := readTupleFrom(slotBuf, h.desc)
		if err != nil {
			return err
		}
		rid := RecordID{PID: h.pid, Slot: i}
		tuple.Rid = &rid
		h.tuples[i] = tuple
		h.numUsed++
	}
	return nil
}

// tupleIter returns a lazy, restartable (by calling tupleIter again)
// sequence of live tuples in slot-ascending order.
func (h *HeapPage) tupleIter() func() (*Tuple, error) {
	i := 0
	return func() (*Tuple, error) {
		for i < len(h.tuples) {
			t := h.tuples[i]
			i++
			if t != nil {
				return t, nil
			}
		}
		return nil, nil
	}
}
