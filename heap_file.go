package godb

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// HeapFile is an unordered collection of tuples backed by a file of
// PageSize-byte pages. table_id is a stable hash of the canonical absolute
// backing path, so two HeapFile instances opened on the same path agree on
// table identity even across process restarts.
type HeapFile struct {
	backingFile string
	tupleDesc   *TupleDesc
	bufPool     *BufferPool
	tableID     int

	fileLock sync.Mutex
}

// NewHeapFile constructs a HeapFile backed by fromFile, with schema td,
// caching pages through bp. The constructor does not touch the file; if it
// is absent, the first ReadPage or FlushPage creates it.
func NewHeapFile(fromFile string, td *TupleDesc, bp *BufferPool) (*HeapFile, error) {
	abs, err := filepath.Abs(fromFile)
	if err != nil {
		abs = fromFile
	}
	h := fnv.New32a()
	h.Write([]byte(abs))

	return &HeapFile{
		backingFile: fromFile,
		tupleDesc:   td,
		bufPool:     bp,
		tableID:     int(h.Sum32()),
	}, nil
}

func (f *HeapFile) BackingFile() string {
	return f.backingFile
}

func (f *HeapFile) TableID() int {
	return f.tableID
}

func (f *HeapFile) Descriptor() *TupleDesc {
	return f.tupleDesc
}

// NumPages returns file length / PageSize, using 64-bit arithmetic
// throughout so files beyond 2GB do not lose precision.
func (f *HeapFile) NumPages() int64 {
	fi, err := os.Stat(f.backingFile)
	if err != nil {
		return 0
	}
	return fi.Size() / int64(PageSize)
}

// LoadFromCSV bulk-loads rows from a CSV file into the HeapFile, inserting
// each row through InsertTuple.
func (f *HeapFile) LoadFromCSV(file *os.File, hasHeader bool, sep string, skipLastField bool) error {
	scanner := bufio.NewScanner(file)
	cnt := 0
	tid := NewTID()
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, sep)
		if skipLastField {
			fields = fields[:len(fields)-1]
		}
		cnt++
		if cnt == 1 && hasHeader {
			continue
		}
		if len(fields) != len(f.tupleDesc.Fields) {
			return GoDBError{MalformedDataError, fmt.Sprintf("LoadFromCSV: line %d (%s) has %d fields, expected %d", cnt, line, len(fields), len(f.tupleDesc.Fields))}
		}
		newFields := make([]DBValue, len(fields))
		for i, raw := range fields {
			switch f.tupleDesc.Fields[i].Ftype {
			case IntType:
				raw = strings.TrimSpace(raw)
				v, err := strconv.ParseInt(raw, 10, 32)
				if err != nil {
					return GoDBError{TypeMismatchError, fmt.Sprintf("LoadFromCSV: couldn't convert value %s to int, line %d", raw, cnt)}
				}
				newFields[i] = IntField{Value: int32(v)}
			case StringType:
				if len(raw) > StringLength {
					raw = raw[:StringLength]
				}
				newFields[i] = StringField{Value: raw}
			}
		}
		newT := &Tuple{Desc: *f.tupleDesc, Fields: newFields}
		if _, err := f.InsertTuple(newT, tid); err != nil {
			return err
		}
	}
	return nil
}

// ReadPage performs a positioned read of PageSize bytes at pid's offset and
// constructs a HeapPage from them.
func (f *HeapFile) ReadPage(pid PageID) (Page, error) {
	pageNo := pid.PageNo()
	f.fileLock.Lock()
	defer f.fileLock.Unlock()

	file, err := os.OpenFile(f.backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("heap file open: %w", err)
	}
	defer file.Close()

	offset := int64(pageNo) * int64(PageSize)
	fi, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("heap file stat: %w", err)
	}
	if offset >= fi.Size() {
		return nil, GoDBError{InvalidPageError, "read past end of file"}
	}
	data := make([]byte, PageSize)
	n, err := file.ReadAt(data, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("heap file read: %w", err)
	}
	if n < PageSize {
		return nil, GoDBError{InvalidPageError, "short read"}
	}

	page := &HeapPage{
		pid:  NewHeapPageID(f.tableID, pageNo),
		desc: f.tupleDesc,
		file: f,
	}
	if err := page.initFromBuffer(bytes.NewBuffer(data)); err != nil {
		return nil, err
	}
	return page, nil
}

// FlushPage writes page's exact on-disk representation back to its offset.
func (f *HeapFile) FlushPage(p Page) error {
	page, ok := p.(*HeapPage)
	if !ok {
		return GoDBError{InvalidPageError, "flushPage: not a HeapPage"}
	}

	f.fileLock.Lock()
	defer f.fileLock.Unlock()

	file, err := os.OpenFile(f.backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	buf, err := page.toBuffer()
	if err != nil {
		return err
	}
	offset := int64(page.pid.PageNo()) * int64(PageSize)
	if _, err := file.WriteAt(buf.Bytes(), offset); err != nil {
		return err
	}
	page.SetDirty(TransactionID{}, false)
	return nil
}

// InsertTuple scans existing pages for a free slot via the BufferPool; if
// none has space, appends a new page. Returns the dirtied pages.
func (f *HeapFile) InsertTuple(t *Tuple, tid TransactionID) ([]Page, error) {
	numPages := int(f.NumPages())
	for pageNo := 0; pageNo < numPages; pageNo++ {
		p, err := f.bufPool.GetPage(f, pageNo, tid, WritePerm)
		if err != nil {
			return nil, err
		}
		hp := p.(*HeapPage)
		if hp.getNumEmptySlots() > 0 {
			if _, err := hp.insertTuple(t, tid); err != nil {
				return nil, err
			}
			return []Page{hp}, nil
		}
	}

	newPage, err := newHeapPage(f.tupleDesc, numPages, f)
	if err != nil {
		return nil, err
	}
	if _, err := newPage.insertTuple(t, tid); err != nil {
		return nil, err
	}
	if err := f.FlushPage(newPage); err != nil {
		return nil, err
	}
	newPage.SetDirty(tid, true)
	f.bufPool.cachePage(f, newPage)
	return []Page{newPage}, nil
}

// DeleteTuple fetches the page named by t.Rid.PID and deletes the tuple
// there.
func (f *HeapFile) DeleteTuple(t *Tuple, tid TransactionID) (Page, error) {
	if t.Rid == nil {
		return nil, GoDBError{TupleNotFoundError, "tuple has no record id"}
	}
	p, err := f.bufPool.GetPage(f, t.Rid.PID.PageNo(), tid, WritePerm)
	if err != nil {
		return nil, err
	}
	hp := p.(*HeapPage)
	if err := hp.deleteTuple(t, tid); err != nil {
		return nil, err
	}
	return hp, nil
}

// heapFileCursor implements the HeapFile cursor state machine:
// closed / open(pageNo, tuples) / exhausted.
type heapFileCursor struct {
	f         *HeapFile
	tid       TransactionID
	open      bool
	pageNo    int
	pageIter  func() (*Tuple, error)
}

// Iterator returns a cursor-backed sequence of every live tuple of the file,
// read through the BufferPool with read intent.
func (f *HeapFile) Iterator(tid TransactionID) (func() (*Tuple, error), error) {
	c := &heapFileCursor{f: f, tid: tid}
	c.rewind()
	return func() (*Tuple, error) {
		if !c.open {
			return nil, nil
		}
		for {
			if c.pageIter == nil {
				if int64(c.pageNo) >= f.NumPages() {
					return nil, nil
				}
				p, err := f.bufPool.GetPage(f, c.pageNo, c.tid, ReadPerm)
				if err != nil {
					return nil, err
				}
				c.pageIter = p.(*HeapPage).tupleIter()
			}
			t, err := c.pageIter()
			if err != nil {
				return nil, err
			}
			if t != nil {
				return t, nil
			}
			c.pageNo++
			c.pageIter = nil
		}
	}, nil
}

func (c *heapFileCursor) rewind() {
	c.open = true
	c.pageNo = 0
	c.pageIter = nil
}
