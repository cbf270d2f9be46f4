package godb

import "fmt"

// Process-wide tunables: plain package vars with test hooks, no config-file
// or flag layer.
var (
	PageSize      = 4096
	StringLength  = 128
	IoCostPerPage = 1000
	NumHistBins   = 100
)

const BufferPoolDefaultPages = 50

var pageSizeStack []int

// SetPageSize overrides PageSize for the duration of a test; pair with
// ResetPageSize.
func SetPageSize(n int) {
	pageSizeStack = append(pageSizeStack, PageSize)
	PageSize = n
}

// ResetPageSize restores the PageSize in effect before the most recent
// SetPageSize call.
func ResetPageSize() {
	if len(pageSizeStack) == 0 {
		PageSize = 4096
		return
	}
	PageSize = pageSizeStack[len(pageSizeStack)-1]
	pageSizeStack = pageSizeStack[:len(pageSizeStack)-1]
}

// DBType is the type of a tuple field: IntType or StringType.
type DBType int

const (
	IntType DBType = iota
	StringType
	UnknownType
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	default:
		return "unknown"
	}
}

// FieldSize returns the serialized size in bytes of a field of this type.
func (t DBType) FieldSize() int {
	switch t {
	case IntType:
		return 4
	case StringType:
		return 4 + StringLength
	default:
		return 0
	}
}

// BoolOp is a comparison operator usable in a Predicate/JoinPredicate.
type BoolOp int

const (
	OpEq BoolOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLike
)

func (op BoolOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLike:
		return "LIKE"
	default:
		return "?"
	}
}

// FieldType names and types one column of a TupleDesc.
type FieldType struct {
	Fname string
	Ftype DBType
}

// TupleDesc is the schema of a Tuple: an ordered, non-empty sequence of
// fields.
type TupleDesc struct {
	Fields []FieldType
}

// Equals compares two TupleDescs elementwise by type only; names are
// irrelevant for equality.
func (td *TupleDesc) Equals(other *TupleDesc) bool {
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i := range td.Fields {
		if td.Fields[i].Ftype != other.Fields[i].Ftype {
			return false
		}
	}
	return true
}

// Copy returns a deep-enough copy of td (the Fields slice is copied; Go
// slice assignment alone would alias the backing array).
func (td *TupleDesc) Copy() *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	return &TupleDesc{Fields: fields}
}

// Merge concatenates td's fields with other's, in that order.
func (td *TupleDesc) Merge(other *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td.Fields)+len(other.Fields))
	fields = append(fields, td.Fields...)
	fields = append(fields, other.Fields...)
	return &TupleDesc{Fields: fields}
}

// bytesPerTuple is the serialized size of one tuple of this TupleDesc.
func (td *TupleDesc) bytesPerTuple() int {
	size := 0
	for _, f := range td.Fields {
		size += f.Ftype.FieldSize()
	}
	return size
}

// FieldIndex returns the index of the field named name, or
// NoSuchElementError if none matches.
func (td *TupleDesc) FieldIndex(name string) (int, error) {
	for i, f := range td.Fields {
		if f.Fname == name {
			return i, nil
		}
	}
	return -1, GoDBError{NoSuchElementError, fmt.Sprintf("no field named %q", name)}
}

// DBValue is the interface implemented by field values (IntField,
// StringField).
type DBValue interface {
	Compare(op BoolOp, other DBValue) bool
	fieldType() DBType
}

// IntField is a signed 32-bit integer field value: INT serializes to 4
// bytes on disk.
type IntField struct {
	Value int32
}

func (f IntField) fieldType() DBType { return IntType }

func (f IntField) Compare(op BoolOp, other DBValue) bool {
	o, ok := other.(IntField)
	if !ok {
		return false
	}
	switch op {
	case OpEq, OpLike:
		return f.Value == o.Value
	case OpNe:
		return f.Value != o.Value
	case OpLt:
		return f.Value < o.Value
	case OpLe:
		return f.Value <= o.Value
	case OpGt:
		return f.Value > o.Value
	case OpGe:
		return f.Value >= o.Value
	default:
		return false
	}
}

// StringField is a fixed-width string field value, logically up to
// StringLength bytes.
type StringField struct {
	Value string
}

func (f StringField) fieldType() DBType { return StringType }

func (f StringField) Compare(op BoolOp, other DBValue) bool {
	o, ok := other.(StringField)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return f.Value == o.Value
	case OpNe:
		return f.Value != o.Value
	case OpLt:
		return f.Value < o.Value
	case OpLe:
		return f.Value <= o.Value
	case OpGt:
		return f.Value > o.Value
	case OpGe:
		return f.Value >= o.Value
	case OpLike:
		return containsSubstring(f.Value, o.Value)
	default:
		return false
	}
}

func containsSubstring(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
