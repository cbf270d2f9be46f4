package godb

// Insert is a single-emission operator: on its first fetch it drains child
// and inserts every tuple into the target file via the BufferPool, then
// emits one tuple holding the count; subsequent fetches are end-of-stream.
type Insert struct {
	base baseOperator

	bp        *BufferPool
	tableFile DBFile
	child     Operator
	desc      *TupleDesc
}

func NewInsert(bp *BufferPool, tableFile DBFile, child Operator) *Insert {
	i := &Insert{
		bp:        bp,
		tableFile: tableFile,
		child:     child,
		desc:      &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}},
	}
	i.base.openImpl = i.openImpl
	i.base.closeImpl = i.Close
	return i
}

func (i *Insert) Descriptor() *TupleDesc { return i.desc }

func (i *Insert) openImpl(tid TransactionID) (fetchFunc, error) {
	if err := i.child.Open(tid); err != nil {
		return nil, err
	}
	done := false
	return func() (*Tuple, error) {
		if done {
			return nil, nil
		}
		done = true
		count := int32(0)
		for {
			has, err := i.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				break
			}
			t, err := i.child.Next()
			if err != nil {
				return nil, err
			}
			if err := i.bp.InsertTuple(tid, i.tableFile, t); err != nil {
				return nil, err
			}
			count++
		}
		return &Tuple{Desc: *i.desc, Fields: []DBValue{IntField{Value: count}}}, nil
	}, nil
}

func (i *Insert) Open(tid TransactionID) error { return i.base.open(tid) }
func (i *Insert) HasNext() (bool, error)       { return i.base.hasNext() }
func (i *Insert) Next() (*Tuple, error)        { return i.base.next() }
func (i *Insert) Close() error {
	if i.child != nil {
		i.child.Close()
	}
	return i.base.close()
}
func (i *Insert) Rewind(tid TransactionID) error { return i.base.rewind(tid) }
