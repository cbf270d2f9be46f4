package godb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
)

// LogFile implements the write-ahead-log half of recovery, kept as an
// inert hook: nothing in BufferPool or the operators calls it
// automatically, but it is a complete, round-trippable log format a caller
// wired for crash recovery could drive. Records frame a type byte,
// transaction id, record body, and trailing offset footer, written through
// a buffered, explicitly Force-to-sync path.
type LogFile struct {
	file    *os.File
	buf     bytes.Buffer
	offset  int64
	catalog *Catalog
}

// LogRecordType tags the kind of a log record.
type LogRecordType int8

const (
	BeginRecord LogRecordType = iota
	CommitRecord
	AbortRecord
	UpdateRecord
)

func (t LogRecordType) String() string {
	switch t {
	case BeginRecord:
		return "begin"
	case CommitRecord:
		return "commit"
	case AbortRecord:
		return "abort"
	case UpdateRecord:
		return "update"
	default:
		return "unknown"
	}
}

// NewLogFile opens (creating if needed) fileName as the backing store for a
// log, resolving page file ids through catalog.
func NewLogFile(fileName string, catalog *Catalog) (*LogFile, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog must be non-nil")
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &LogFile{file: f, catalog: catalog}, nil
}

func (w *LogFile) write(data any) {
	binary.Write(&w.buf, binary.LittleEndian, data)
	w.offset += int64(binary.Size(data))
}

// Force flushes buffered records to disk and fsyncs.
func (w *LogFile) Force() error {
	if w.buf.Len() == 0 {
		return nil
	}
	if _, err := w.file.Write(w.buf.Bytes()); err != nil {
		return err
	}
	w.buf.Reset()
	return w.file.Sync()
}

func (w *LogFile) seek(offset int64, whence int) error {
	if err := w.Force(); err != nil {
		return err
	}
	n, err := w.file.Seek(offset, whence)
	if err != nil {
		return fmt.Errorf("invalid seek (%d, %d): %w", offset, whence, err)
	}
	w.offset = n
	return nil
}

func (w *LogFile) read(data any) error {
	if err := w.Force(); err != nil {
		return err
	}
	if err := binary.Read(w.file, binary.LittleEndian, data); err != nil {
		return err
	}
	w.offset += int64(binary.Size(data))
	return nil
}

func (w *LogFile) writeHeader(typ LogRecordType, tid TransactionID) {
	w.write(int8(typ))
	w.write(tid.id)
}

func (w *LogFile) writeFooter(offset int64) {
	w.write(offset)
}

func (w *LogFile) readTransactionID() (TransactionID, error) {
	var id int64
	if err := w.read(&id); err != nil {
		return TransactionID{}, err
	}
	return TransactionID{id: id}, nil
}

func (w *LogFile) writePage(page Page) error {
	hp, ok := page.(*HeapPage)
	if !ok {
		return fmt.Errorf("unsupported page type: %T", page)
	}
	w.write(int32(hp.file.TableID()))
	w.write(int32(hp.pid.PageNo()))
	buf, err := hp.toBuffer()
	if err != nil {
		return err
	}
	w.write(buf.Bytes())
	return nil
}

func (w *LogFile) readPage() (Page, error) {
	var fileID, pageNo int32
	if err := w.read(&fileID); err != nil {
		return nil, err
	}
	if err := w.read(&pageNo); err != nil {
		return nil, err
	}
	// Table ids are 32-bit unsigned hashes; undo writePage's int32 narrowing.
	file, err := w.catalog.GetFile(int(uint32(fileID)))
	if err != nil {
		return nil, err
	}
	hf, ok := file.(*HeapFile)
	if !ok {
		return nil, fmt.Errorf("logged page belongs to a non-heap file")
	}
	pg, err := newHeapPage(hf.Descriptor(), int(pageNo), hf)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, PageSize)
	if err := w.read(buf); err != nil {
		return nil, err
	}
	if err := pg.initFromBuffer(bytes.NewBuffer(buf)); err != nil {
		return nil, err
	}
	return pg, nil
}

// LogBegin records the start of tid.
func (w *LogFile) LogBegin(tid TransactionID) {
	offset := w.offset
	w.writeHeader(BeginRecord, tid)
	w.writeFooter(offset)
}

// LogCommit records the commit of tid.
func (w *LogFile) LogCommit(tid TransactionID) {
	offset := w.offset
	w.writeHeader(CommitRecord, tid)
	w.writeFooter(offset)
}

// LogAbort records the abort of tid.
func (w *LogFile) LogAbort(tid TransactionID) {
	offset := w.offset
	w.writeHeader(AbortRecord, tid)
	w.writeFooter(offset)
}

// LogUpdate records the before/after images of one page modified by tid.
// Does not force the log to disk.
func (w *LogFile) LogUpdate(tid TransactionID, before, after Page) error {
	if before == nil || after == nil {
		return fmt.Errorf("before and after images must be non-nil")
	}
	offset := w.offset
	w.writeHeader(UpdateRecord, tid)
	if err := w.writePage(before); err != nil {
		return err
	}
	if err := w.writePage(after); err != nil {
		return err
	}
	w.writeFooter(offset)
	return nil
}

// LogRecord is one entry read back from a LogFile.
type LogRecord struct {
	Offset int64
	Type   LogRecordType
	Tid    TransactionID
	Before Page
	After  Page
}

// ForwardIterator returns a function yielding log records from the
// current offset to EOF, in the order they were written.
func (w *LogFile) ForwardIterator() func() (*LogRecord, error) {
	partial := func(msg string, err error) (*LogRecord, error) {
		return nil, fmt.Errorf("failed to read %s: partial record at offset %d: %w", msg, w.offset, err)
	}
	return func() (*LogRecord, error) {
		rec := &LogRecord{Offset: w.offset}
		var typ int8
		if err := w.read(&typ); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return partial("record type", err)
		}
		rec.Type = LogRecordType(typ)

		tid, err := w.readTransactionID()
		if err != nil {
			return partial("transaction id", err)
		}
		rec.Tid = tid

		if rec.Type == UpdateRecord {
			if rec.Before, err = w.readPage(); err != nil {
				return partial("before page", err)
			}
			if rec.After, err = w.readPage(); err != nil {
				return partial("after page", err)
			}
		}

		var footer int64
		if err := w.read(&footer); err != nil || footer != rec.Offset {
			return partial("offset footer", err)
		}
		return rec, nil
	}
}

// OutputPrettyLog prints a human-readable rendering of the log without
// disturbing the file's current read position.
func (w *LogFile) OutputPrettyLog() error {
	saved := w.offset
	defer w.seek(saved, io.SeekStart)

	if err := w.seek(0, io.SeekStart); err != nil {
		return err
	}
	iter := w.ForwardIterator()
	for {
		rec, err := iter()
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		log.Printf("%d %s tid=%v", rec.Offset, rec.Type, rec.Tid)
	}
}
