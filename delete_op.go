package godb

// Delete is symmetric to Insert: drains child on first fetch and deletes
// each tuple via the BufferPool, using t.Rid.
type Delete struct {
	base baseOperator

	bp        *BufferPool
	tableFile DBFile
	child     Operator
	desc      *TupleDesc
}

func NewDelete(bp *BufferPool, tableFile DBFile, child Operator) *Delete {
	d := &Delete{
		bp:        bp,
		tableFile: tableFile,
		child:     child,
		desc:      &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}},
	}
	d.base.openImpl = d.openImpl
	d.base.closeImpl = d.Close
	return d
}

func (d *Delete) Descriptor() *TupleDesc { return d.desc }

func (d *Delete) openImpl(tid TransactionID) (fetchFunc, error) {
	if err := d.child.Open(tid); err != nil {
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
			has, err := d.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				break
			}
			t, err := d.child.Next()
			if err != nil {
				return nil, err
			}
			if err := d.bp.DeleteTuple(tid, d.tableFile, t); err != nil {
				return nil, err
			}
			count++
		}
		return &Tuple{Desc: *d.desc, Fields: []DBValue{IntField{Value: count}}}, nil
	}, nil
}

func (d *Delete) Open(tid TransactionID) error { return d.base.open(tid) }
func (d *Delete) HasNext() (bool, error)       { return d.base.hasNext() }
func (d *Delete) Next() (*Tuple, error)        { return d.base.next() }
func (d *Delete) Close() error {
	if d.child != nil {
		d.child.Close()
	}
	return d.base.close()
}
func (d *Delete) Rewind(tid TransactionID) error { return d.base.rewind(tid) }
