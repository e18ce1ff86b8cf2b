// Package ir is the abstract IR-backend surface requires: a
// small set of types/values/blocks/emit primitives the lowering driver
// (package lower) programs against, plus one concrete implementation — a
// textual backend that renders a pseudo-LLVM module as it would be handed
// to `-ll`.
//
// No LLVM binding appears anywhere in the retrieval pack (grailbio/gql and
// its siblings are a query engine, a codegen-from-go/ast tool, a game
// server, and a documentation mirror — none touch code generation), so
// this is the one package in this tree built without a grounded
// third-party dependency; see DESIGN.md's "Non-stdlib exceptions".
package ir

import "fmt"

// Type is any IR type: a primitive, pointer, array, struct, or function
// type.
type Type interface {
	String() string
	irType()
}

type primType struct{ name string }

func (p primType) String() string { return p.name }
func (primType) irType()          {}

var (
	Void = primType{"void"}
	I1   = primType{"i1"} // bool
	I8   = primType{"i8"}
	I16  = primType{"i16"}
	I32  = primType{"i32"}
	I64  = primType{"i64"}
	F32  = primType{"float"}
	F64  = primType{"double"}
)

// IntType returns the sized-integer primitive type for bits (8/16/32/64);
// signedness is not part of an IR integer type (as in LLVM, it's carried by
// the opcode, not the type).
func IntType(bits int) Type {
	switch bits {
	case 1:
		return I1
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	default:
		panic(fmt.Sprintf("ir: unsupported integer width %d", bits))
	}
}

// PointerType is a pointer-of(T) type.
type PointerType struct{ Elem Type }

func (p PointerType) String() string { return p.Elem.String() + "*" }
func (PointerType) irType()          {}

// ArrayType is array-of(T, N).
type ArrayType struct {
	Elem Type
	N    uint64
}

func (a ArrayType) String() string { return fmt.Sprintf("[%d x %s]", a.N, a.Elem) }
func (ArrayType) irType()          {}

// StructType is an anonymous or named aggregate type. SetBody lets a named
// struct type be created as an opaque forward-reference first and given
// its field types later, the way a self-referential struct needs to.
type StructType struct {
	Name   string // "" for an anonymous/literal struct type
	Fields []Type
	Packed bool
}

func (s *StructType) String() string {
	if s.Name != "" {
		return "%" + s.Name
	}
	return s.bodyString()
}

func (s *StructType) bodyString() string {
	out := "{"
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.String()
	}
	return out + "}"
}

func (*StructType) irType() {}

// SetBody installs fields on a named struct type, resolving a forward
// reference created by NewOpaqueStruct.
func (s *StructType) SetBody(fields []Type, packed bool) {
	s.Fields = fields
	s.Packed = packed
}

// NewOpaqueStruct creates a named struct type with no fields yet, for a
// self-referential declaration to point at via PointerType before its own
// body is known.
func NewOpaqueStruct(name string) *StructType { return &StructType{Name: name} }

// FuncType is a function's type: return type, parameter types, and whether
// it is variadic.
type FuncType struct {
	Ret    Type
	Params []Type
	Vararg bool
}

func (f *FuncType) String() string {
	out := f.Ret.String() + " ("
	for i, p := range f.Params {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	if f.Vararg {
		if len(f.Params) > 0 {
			out += ", "
		}
		out += "..."
	}
	return out + ")"
}

func (*FuncType) irType() {}
