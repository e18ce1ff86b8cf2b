package types

import "github.com/ca-lang/cac/ast"

// NameKind classifies what a bare type name resolves to, one level below
// CADataType itself — the unwinder needs this before it can decide how to
// keep recursing.
type NameKind int

const (
	NameUnknown NameKind = iota
	NamePrimitive
	NameAlias
	NameStruct
)

// FieldRef is one (name, typeid) pair of a struct-like type, as handed to
// the unwinder by a Resolver.
type FieldRef struct {
	Name   string
	TypeID string
}

// Resolver bridges the unwinder to whatever owns the actual symbol table
// (package symtable, via resolver.TypeAdapter). Keeping this as an
// interface lets package types stay free of any symtable import, avoiding a
// types<->symtable import cycle (symtable's DataTypeEntry already names
// ast.StructKind, and lower needs both).
type Resolver interface {
	// LookupType resolves a bare type name in scope. found is false if no
	// such name is declared anywhere up the scope chain.
	LookupType(scope ast.Scope, name string) (kind NameKind, aliasTarget string, structKind ast.StructKind, fields []FieldRef, ownerScope ast.Scope, found bool)

	// InferExprType resolves a `typeof(expr)` hole, identified by the
	// opaque key the parser embedded in the typeid text (carried here as a
	// string key rather than a raw AST pointer so typeid strings stay
	// comparable/hashable).
	InferExprType(scope ast.Scope, exprKey string) (typeid string, found bool)
}
