package godb

import "bytes"

// Project narrows each child tuple down to fieldIndices, optionally
// renaming the output fields and deduplicating.
type Project struct {
	base baseOperator

	fieldIndices []int
	outNames     []string
	distinct     bool
	child        Operator
	desc         *TupleDesc
}

// NewProject constructs a projection operator. outNames, if non-nil, must
// have the same length as fieldIndices.
func NewProject(fieldIndices []int, outNames []string, distinct bool, child Operator) (*Project, error) {
	if outNames != nil && len(outNames) != len(fieldIndices) {
		return nil, GoDBError{MalformedDataError, "outNames must match fieldIndices in length"}
	}
	childDesc := child.Descriptor()
	fields := make([]FieldType, len(fieldIndices))
	for i, idx := range fieldIndices {
		name := childDesc.Fields[idx].Fname
		if outNames != nil {
			name = outNames[i]
		}
		fields[i] = FieldType{Fname: name, Ftype: childDesc.Fields[idx].Ftype}
	}
	p := &Project{
		fieldIndices: fieldIndices,
		outNames:     outNames,
		distinct:     distinct,
		child:        child,
		desc:         &TupleDesc{Fields: fields},
	}
	p.base.openImpl = p.openImpl
	p.base.closeImpl = p.Close
	return p, nil
}

func (p *Project) Descriptor() *TupleDesc { return p.desc }

func (p *Project) openImpl(tid TransactionID) (fetchFunc, error) {
	if err := p.child.Open(tid); err != nil {
		return nil, err
	}
	var seen map[string]struct{}
	if p.distinct {
		seen = make(map[string]struct{})
	}
	return func() (*Tuple, error) {
		for {
			has, err := p.child.HasNext()
			if err != nil || !has {
				return nil, err
			}
			t, err := p.child.Next()
			if err != nil {
				return nil, err
			}
			projected := t.project(p.fieldIndices, p.outNames)
			if p.distinct {
				key := projectionKey(projected)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}
			return projected, nil
		}
	}, nil
}

func projectionKey(t *Tuple) string {
	var buf bytes.Buffer
	t.writeTo(&buf)
	return buf.String()
}

func (p *Project) Open(tid TransactionID) error { return p.base.open(tid) }
func (p *Project) HasNext() (bool, error)       { return p.base.hasNext() }
func (p *Project) Next() (*Tuple, error)        { return p.base.next() }
func (p *Project) Close() error {
	if p.child != nil {
		p.child.Close()
	}
	return p.base.close()
}
func (p *Project) Rewind(tid TransactionID) error { return p.base.rewind(tid) }
