package godb

import "fmt"

// SeqScan emits every tuple of a table by delegating to its HeapFile
// cursor, renaming each field "{alias}.{name}".
type SeqScan struct {
	base baseOperator

	file  DBFile
	alias string
	desc  *TupleDesc
}

// NewSeqScan constructs a scan of file, qualifying its output fields with
// alias.
func NewSeqScan(file DBFile, alias string) *SeqScan {
	child := file.Descriptor()
	fields := make([]FieldType, len(child.Fields))
	for i, f := range child.Fields {
		fields[i] = FieldType{Fname: fmt.Sprintf("%s.%s", alias, f.Fname), Ftype: f.Ftype}
	}
	s := &SeqScan{file: file, alias: alias, desc: &TupleDesc{Fields: fields}}
	s.base.openImpl = s.openImpl
	s.base.closeImpl = s.Close
	return s
}

func (s *SeqScan) Descriptor() *TupleDesc { return s.desc }

func (s *SeqScan) openImpl(tid TransactionID) (fetchFunc, error) {
	iter, err := s.file.Iterator(tid)
	if err != nil {
		return nil, err
	}
	return func() (*Tuple, error) {
		t, err := iter()
		if err != nil || t == nil {
			return t, err
		}
		renamed := &Tuple{Desc: *s.desc, Fields: t.Fields, Rid: t.Rid}
		return renamed, nil
	}, nil
}

func (s *SeqScan) Open(tid TransactionID) error         { return s.base.open(tid) }
func (s *SeqScan) HasNext() (bool, error)               { return s.base.hasNext() }
func (s *SeqScan) Next() (*Tuple, error)                { return s.base.next() }
func (s *SeqScan) Close() error                         { return s.base.close() }
func (s *SeqScan) Rewind(tid TransactionID) error       { return s.base.rewind(tid) }
