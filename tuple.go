package godb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Tuple is a row: a TupleDesc plus one DBValue per field, plus an optional
// RecordID set once the tuple has been read from (or placed on) a page.
type Tuple struct {
	Desc   TupleDesc
	Fields []DBValue
	Rid    *RecordID
}

// SetField mutates the value at index i in place.
func (t *Tuple) SetField(i int, v DBValue) {
	t.Fields[i] = v
}

// writeStringField serializes a STRING field as a 4-byte big-endian length
// prefix followed by StringLength bytes, right-padded with zeros.
func writeStringField(b *bytes.Buffer, f StringField) error {
	v := f.Value
	if len(v) > StringLength {
		v = v[:StringLength]
	}
	if err := binary.Write(b, binary.BigEndian, int32(len(v))); err != nil {
		return err
	}
	padded := make([]byte, StringLength)
	copy(padded, v)
	_, err := b.Write(padded)
	return err
}

func writeIntField(b *bytes.Buffer, f IntField) error {
	return binary.Write(b, binary.BigEndian, f.Value)
}

// writeTo serializes the tuple's fields, in TupleDesc order, into b.
func (t *Tuple) writeTo(b *bytes.Buffer) error {
	for i, f := range t.Fields {
		switch v := f.(type) {
		case StringField:
			if err := writeStringField(b, v); err != nil {
				return err
			}
		case IntField:
			if err := writeIntField(b, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("tuple field %d has unsupported type %T", i, f)
		}
	}
	return nil
}

func readStringField(b *bytes.Buffer) (StringField, error) {
	var n int32
	if err := binary.Read(b, binary.BigEndian, &n); err != nil {
		return StringField{}, err
	}
	if n < 0 || int(n) > StringLength {
		return StringField{}, GoDBError{MalformedDataError, "string field length prefix out of range"}
	}
	buf := make([]byte, StringLength)
	if _, err := b.Read(buf); err != nil {
		return StringField{}, err
	}
	return StringField{Value: strings.TrimRight(string(buf[:n]), "\x00")}, nil
}

func readIntField(b *bytes.Buffer) (IntField, error) {
	var v int32
	if err := binary.Read(b, binary.BigEndian, &v); err != nil {
		return IntField{}, err
	}
	return IntField{Value: v}, nil
}

// readTupleFrom deserializes one tuple of the given TupleDesc from b.
func readTupleFrom(b *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	fields := make([]DBValue, len(desc.Fields))
	for i, fd := range desc.Fields {
		switch fd.Ftype {
		case StringType:
			f, err := readStringField(b)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		default:
			f, err := readIntField(b)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
	}
	return &Tuple{Desc: *desc, Fields: fields}, nil
}

// equals compares two tuples for equality: equal TupleDescs and equal
// fields in order. RecordIDs are not compared -- the RecordID is a
// locator, not part of the tuple's value identity.
func (t *Tuple) equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.Equals(&other.Desc) || len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// project returns a new Tuple containing only the fields named in
// indices, in that order. outNames, if non-nil, renames the projected
// fields (e.g. for an aliased SELECT list); pass nil to keep original names.
func (t *Tuple) project(indices []int, outNames []string) *Tuple {
	desc := TupleDesc{Fields: make([]FieldType, len(indices))}
	fields := make([]DBValue, len(indices))
	for i, idx := range indices {
		name := t.Desc.Fields[idx].Fname
		if outNames != nil && i < len(outNames) && outNames[i] != "" {
			name = outNames[i]
		}
		desc.Fields[i] = FieldType{Fname: name, Ftype: t.Desc.Fields[idx].Ftype}
		fields[i] = t.Fields[idx]
	}
	return &Tuple{Desc: desc, Fields: fields}
}

// joinTuples concatenates t1's fields with t2's, producing a Tuple whose
// TupleDesc is the merge of both.
func joinTuples(t1, t2 *Tuple) *Tuple {
	if t1 == nil {
		return t2
	}
	if t2 == nil {
		return t1
	}
	desc := t1.Desc.Merge(&t2.Desc)
	fields := make([]DBValue, 0, len(t1.Fields)+len(t2.Fields))
	fields = append(fields, t1.Fields...)
	fields = append(fields, t2.Fields...)
	return &Tuple{Desc: *desc, Fields: fields}
}

type fieldOrder int

const (
	orderLess fieldOrder = iota
	orderEqual
	orderGreater
)

// compareField orders two tuples by the value of field index idx.
func compareField(t1, t2 *Tuple, idx int) fieldOrder {
	v1, v2 := t1.Fields[idx], t2.Fields[idx]
	if v1.Compare(OpEq, v2) {
		return orderEqual
	}
	if v1.Compare(OpLt, v2) {
		return orderLess
	}
	return orderGreater
}

// PrettyPrintString renders a tuple as a space-joined list of field values,
// for debug output.
func (t *Tuple) PrettyPrintString() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		switch v := f.(type) {
		case IntField:
			parts[i] = fmt.Sprintf("%d", v.Value)
		case StringField:
			parts[i] = v.Value
		default:
			parts[i] = fmt.Sprintf("%v", f)
		}
	}
	return strings.Join(parts, " ")
}
