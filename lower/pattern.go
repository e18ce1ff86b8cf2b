package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// bindPattern destructures a value already stored at addr (of type dt)
// according to pat, inserting one VariableEntry per bound name into scope.
// Every nested variable is bound to an address computed by GEP'ing into
// addr rather than to a copy, so each binding is independently loadable
// and, when mutable, storable — a `let (a, b) = pair;` exposes `a`/`b` as
// real lvalues aliasing the fields of `pair`'s single storage slot.
func (d *Driver) bindPattern(scope *symtable.Scope, pat ast.Pattern, addr ir.Value, dt *types.CADataType, mutable bool) {
	switch pat.Kind {
	case ast.PatVar:
		d.bindName(scope, pat.Name, addr, dt, mutable)
		for _, alias := range pat.MoreBind {
			d.bindName(scope, alias, addr, dt, mutable)
		}
	case ast.PatIgnoreOne, ast.PatIgnoreRange:
		// nothing to bind
	case ast.PatArray:
		d.bindArrayPattern(scope, pat, addr, dt, mutable)
	case ast.PatTuple, ast.PatGenTuple:
		d.bindTuplePattern(scope, pat, addr, dt, mutable)
	case ast.PatStruct:
		d.bindStructPattern(scope, pat, addr, dt, mutable)
	default:
		diag.Fatalf(diag.Unknown, "internal error: unhandled pattern kind %v", pat.Kind)
	}
}

func (d *Driver) bindName(scope *symtable.Scope, name string, addr ir.Value, dt *types.CADataType, mutable bool) {
	v := &symtable.CAVariable{Name: name, DataType: dt.Signature, LLVMValue: addr}
	if existing, ok := scope.LocalLookup(name); ok {
		if ve, ok := existing.(*symtable.VariableEntry); ok {
			ve.Shielding.Push(v)
			return
		}
	}
	scope.Insert(name, symtable.NewVariableEntry(v))
}

func (d *Driver) bindArrayPattern(scope *symtable.Scope, pat ast.Pattern, addr ir.Value, dt *types.CADataType, mutable bool) {
	if dt.Token != types.ARRAY {
		diag.Fatalf(diag.Unknown, "cannot destructure a value of type %s as an array pattern", dt.Signature)
	}
	elemType := dt.Array.Elem
	length := dt.Array.Lengths[0]
	it := d.irType(dt)
	elemIT := d.irType(elemType)
	f := d.fn()

	slurp := -1
	for i, item := range pat.Items {
		if item.Kind == ast.PatIgnoreRange {
			slurp = i
			break
		}
	}
	if slurp < 0 {
		if uint64(len(pat.Items)) != length {
			diag.Fatalf(diag.Unknown, "array pattern expects %d elements, found %d", length, len(pat.Items))
		}
		for i, item := range pat.Items {
			elemAddr := f.b.GEP(addr, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(i)}}, elemIT)
			d.bindPattern(scope, item, elemAddr, elemType, mutable)
		}
		return
	}
	before := pat.Items[:slurp]
	after := pat.Items[slurp+1:]
	if uint64(len(before)+len(after)) > length {
		diag.Fatalf(diag.Unknown, "array pattern has more bindings than the array's %d elements", length)
	}
	for i, item := range before {
		elemAddr := f.b.GEP(addr, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(i)}}, elemIT)
		d.bindPattern(scope, item, elemAddr, elemType, mutable)
	}
	for j, item := range after {
		idx := int64(length) - int64(len(after)) + int64(j)
		elemAddr := f.b.GEP(addr, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: idx}}, elemIT)
		d.bindPattern(scope, item, elemAddr, elemType, mutable)
	}
}

func (d *Driver) bindTuplePattern(scope *symtable.Scope, pat ast.Pattern, addr ir.Value, dt *types.CADataType, mutable bool) {
	if dt.Token != types.STRUCT {
		diag.Fatalf(diag.Unknown, "cannot destructure a value of type %s as a tuple pattern", dt.Signature)
	}
	it := d.irType(dt)
	f := d.fn()
	fields := dt.Struct.Fields
	if len(pat.Items) != len(fields) {
		diag.Fatalf(diag.Unknown, "tuple pattern expects %d members, found %d", len(fields), len(pat.Items))
	}
	for i, item := range pat.Items {
		ft := fields[i].Type
		fieldAddr := f.b.GEP(addr, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(i)}}, d.irType(ft))
		d.bindPattern(scope, item, fieldAddr, ft, mutable)
	}
}

func (d *Driver) bindStructPattern(scope *symtable.Scope, pat ast.Pattern, addr ir.Value, dt *types.CADataType, mutable bool) {
	if dt.Token != types.STRUCT {
		diag.Fatalf(diag.Unknown, "cannot destructure a value of type %s as a struct pattern", dt.Signature)
	}
	it := d.irType(dt)
	f := d.fn()
	seen := make(map[string]bool, len(pat.FieldNames))
	for i, item := range pat.Items {
		name := pat.FieldNames[i]
		if seen[name] {
			diag.Fatalf(diag.Unknown, "field %q bound more than once in struct pattern", name)
		}
		seen[name] = true
		idx, ft := fieldIndex(dt, name)
		fieldAddr := f.b.GEP(addr, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(ft))
		d.bindPattern(scope, item, fieldAddr, ft, mutable)
	}
}
