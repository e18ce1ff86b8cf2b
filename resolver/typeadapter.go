package resolver

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// TypeAdapter implements types.Resolver over package symtable, letting the
// type-unwinder in package types stay free of any symtable import (avoiding
// a types<->symtable cycle: symtable.DataTypeEntry already needs
// ast.StructKind, and resolver sits above both).
type TypeAdapter struct{}

var _ types.Resolver = TypeAdapter{}

func asScope(s ast.Scope) *symtable.Scope {
	sc, ok := s.(*symtable.Scope)
	if !ok {
		return nil
	}
	return sc
}

// LookupType implements types.Resolver.
func (TypeAdapter) LookupType(scope ast.Scope, name string) (types.NameKind, string, ast.StructKind, []types.FieldRef, ast.Scope, bool) {
	sc := asScope(scope)
	if sc == nil {
		return types.NameUnknown, "", 0, nil, nil, false
	}
	entry, owner, ok := symtable.Getsym(sc, name)
	if !ok {
		return types.NameUnknown, "", 0, nil, nil, false
	}
	switch e := entry.(type) {
	case *symtable.AliasEntry:
		return types.NameAlias, e.Target, 0, nil, owner, true
	case *symtable.DataTypeEntry:
		var fields []types.FieldRef
		if e.Members != nil {
			for i, n := range e.Members.Names {
				fields = append(fields, types.FieldRef{Name: n, TypeID: e.Members.Types[i]})
			}
		}
		fieldOwner := ast.Scope(owner)
		if e.IDTable != nil {
			fieldOwner = e.IDTable
		}
		return types.NameStruct, "", e.Kind, fields, fieldOwner, true
	default:
		return types.NameUnknown, "", 0, nil, nil, false
	}
}

// InferExprType implements types.Resolver. The core type-graph package has
// no access to already-lowered expression types; the lowering driver
// (package lower) resolves typeof() holes itself, before ever asking
// package types to unwind a signature that contains one, so this adapter
// path is never exercised in practice and exists to satisfy the interface.
func (TypeAdapter) InferExprType(scope ast.Scope, exprKey string) (string, bool) {
	return "", false
}
