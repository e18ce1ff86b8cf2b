// Package types implements the CA compiler's type system: the CADataType
// graph, canonical signature strings, unwinding of named types into their
// structural form, struct layout, literal inference/determination, and the
// `as` cast table.
package types

import "github.com/ca-lang/cac/ast"

// ID is a typeid: an interned handle to a type-signature string. The
// original implementation represents this as an integer handle into the
// process-wide string interner (package intern); here it is simply the
// canonical "t:..." string itself; Go's map/string machinery makes that
// exactly as cheap as a handle lookup, and it avoids threading an interner
// reference through every signature-construction helper.
type ID = string

// TokenKind is the token kind of a type "Types (CADataType)".
type TokenKind int

const (
	VOID TokenKind = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	BOOL
	POINTER
	ARRAY
	STRUCT
	SLICE
	RANGE
	CSTRING
)

var tokenNames = map[TokenKind]string{
	VOID: "void", I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64", BOOL: "bool",
	POINTER: "*", ARRAY: "array", STRUCT: "struct", SLICE: "slice",
	RANGE: "range", CSTRING: "cstring",
}

func (k TokenKind) String() string { return tokenNames[k] }

// IsInteger reports whether k is one of the fixed-width integer kinds.
func (k TokenKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether k is a signed integer kind.
func (k TokenKind) IsSigned() bool {
	switch k {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k TokenKind) IsUnsigned() bool {
	switch k {
	case U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is a floating-point kind.
func (k TokenKind) IsFloat() bool { return k == F32 || k == F64 }

// Status is the normalization status of a CADataType.
type Status int

const (
	StatusNone Status = iota
	StatusOrig
	StatusExpand
	StatusCompact
)

// AllocPos hints at where a pointer's pointee was allocated.
type AllocPos int

const (
	AllocStack AllocPos = iota
	AllocHeap
)

// PointerInfo is the payload of a POINTER-kind CADataType.
type PointerInfo struct {
	Kernel    *CADataType
	Dimension int // always 1 once Status==StatusExpand
	Alloc     AllocPos
}

// ArrayInfo is the payload of an ARRAY-kind CADataType.
type ArrayInfo struct {
	Elem      *CADataType
	Dimension int // always 1 once Status==StatusExpand
	Lengths   []uint64
}

// StructField is one member of a struct-kind CADataType. Name is "" for a
// tuple's positional members.
type StructField struct {
	Name   string
	Offset int64
	Type   *CADataType
}

// StructInfo is the payload of a STRUCT/SLICE/RANGE-backing CADataType.
type StructInfo struct {
	Kind     ast.StructKind
	Name     string
	Fields   []StructField
	MaxAlign int64
	Packed   bool
}

// RangeKind enumerates the six range shapes.
type RangeKind int

const (
	RangeFull RangeKind = iota
	RangeInclusive
	RangeRightExclusive
	RangeInclusiveTo
	RangeRightExclusiveTo
	RangeFrom
)

// RangeInfo is the payload of a RANGE-kind CADataType.
type RangeInfo struct {
	Kind      RangeKind
	Inclusive bool
	Start     *CADataType // nil if this range form has no start
	End       *CADataType // nil if this range form has no end
	Packaged  *CADataType // the 2-field general-tuple type carrying start/end at runtime
}

// CADataType is a node in the (possibly cyclic) type DAG. Every instance is
// uniquely owned by a Cache; all references to it are shared pointers.
type CADataType struct {
	Token      TokenKind
	FormalName string
	ByteSize   int64 // -1: unbounded/recursive, -2: currently being computed
	Signature  string
	Status     Status

	Pointer *PointerInfo
	Array   *ArrayInfo
	Struct  *StructInfo
	Range   *RangeInfo
}

// SizeUnbounded and SizeComputing are the two negative sentinel sizes the
// unwinder's recursive size computation can produce.
const (
	SizeUnbounded = int64(-1)
	SizeComputing = int64(-2)
)

// Identical reports whether t1 and t2 name the same type: defines
// type identity as signature equality (nominal equality over the canonical
// string form).
func Identical(t1, t2 *CADataType) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}
	return t1.Signature == t2.Signature
}
