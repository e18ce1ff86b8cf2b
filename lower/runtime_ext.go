package lower

import (
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/runtime"
)

// declareExtern installs ext as an extern declaration in m the first time
// any caller needs to call it, idempotently (Module.NewFunction itself
// already no-ops on a repeated name).
func declareExtern(m *ir.Module, ext runtime.Extern) *ir.Function {
	ft := &ir.FuncType{Ret: runtimeIRType(ext.RetType), Vararg: ext.Variadic}
	for _, a := range ext.ArgTypes {
		ft.Params = append(ft.Params, runtimeIRType(a))
	}
	return m.NewFunction(ext.Name, ft, nil, ir.External, true)
}

// runtimeIRType converts one of runtime.Extern's typeid strings directly to
// an ir.Type, independent of the type cache: the fixed runtime externs use
// only a handful of shapes (i32, u64, void, *i8, *void) that never need a
// full catype_get_by_name resolution.
func runtimeIRType(typeid string) ir.Type {
	switch typeid {
	case "t:i32":
		return ir.I32
	case "t:i64":
		return ir.I64
	case "t:u64":
		return ir.I64
	case "t:void":
		return ir.Void
	case "t:*i8":
		return ir.PointerType{Elem: ir.I8}
	case "t:*void":
		return ir.PointerType{Elem: ir.I8}
	default:
		return ir.I64
	}
}
