package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// dbgPrintValue lowers `print expr;` to a sequence of printf calls built
// structurally from expr's type: one call per literal text fragment plus
// one per leaf scalar value, so a single recursive walk handles every
// nested shape (arrays, named/general tuples, slices, ranges) without
// needing to assemble one combined format string up front.
func (d *Driver) dbgPrintValue(scope *symtable.Scope, v ir.Value, dt *types.CADataType) {
	d.printStructured(v, dt)
	d.printfLit("\n")
}

func (d *Driver) printStructured(v ir.Value, dt *types.CADataType) {
	switch dt.Token {
	case types.POINTER:
		d.printfFmt("%p", v)
	case types.ARRAY:
		d.printArray(v, dt)
	case types.STRUCT, types.SLICE:
		d.printAggregate(v, dt)
	case types.RANGE:
		d.printRange(v, dt)
	default:
		d.printScalar(v, dt)
	}
}

func (d *Driver) printScalar(v ir.Value, dt *types.CADataType) {
	switch dt.Token {
	case types.BOOL:
		thenBB := d.fn().irFn.AppendBlock(d.Mod, "")
		elseBB := d.fn().irFn.AppendBlock(d.Mod, "")
		joinBB := d.fn().irFn.AppendBlock(d.Mod, "")
		d.fn().b.CondBr(v, thenBB, elseBB)
		d.fn().b.SetInsertPoint(thenBB)
		d.printfLit("true")
		d.fn().b.Br(joinBB)
		d.fn().b.SetInsertPoint(elseBB)
		d.printfLit("false")
		d.fn().b.Br(joinBB)
		d.fn().b.SetInsertPoint(joinBB)
	case types.F32, types.F64:
		fv := v
		if dt.Token == types.F32 {
			fv = d.fn().b.Cast(ir.FPExt, v, ir.F64)
		}
		d.printfFmt("%f", fv)
	case types.CSTRING:
		d.printfFmt("%s", v)
	case types.I8, types.I16, types.I32:
		d.printfFmt("%d", promoteOrSelf(d, v, ir.I32, true))
	case types.U8, types.U16, types.U32:
		d.printfFmt("%u", promoteOrSelf(d, v, ir.I32, false))
	case types.I64:
		d.printfFmt("%lld", v)
	case types.U64:
		d.printfFmt("%llu", v)
	default:
		d.printfFmt("%d", v)
	}
}

// promoteOrSelf widens v to t via sext/zext, skipping the cast entirely
// when v is already that width (the ir.Builder has no "cast to own type"
// no-op built in, and emitting one would violate a well-formed module).
func promoteOrSelf(d *Driver, v ir.Value, t ir.Type, signed bool) ir.Value {
	if v.Type() == t {
		return v
	}
	if signed {
		return d.fn().b.Cast(ir.SExt, v, t)
	}
	return d.fn().b.Cast(ir.ZExt, v, t)
}

func (d *Driver) printArray(v ir.Value, dt *types.CADataType) {
	it := d.irType(dt)
	slot := d.fn().b.GenEntryBlockVar(it, "")
	d.fn().b.Store(v, slot)
	elemType := dt.Array.Elem
	elemIT := d.irType(elemType)
	length := dt.Array.Lengths[0]
	d.printfLit("[")
	for i := uint64(0); i < length; i++ {
		if i > 0 {
			d.printfLit(", ")
		}
		addr := d.fn().b.GEP(slot, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I64, V: int64(i)}}, elemIT)
		elem := d.fn().b.Load(addr, elemIT)
		d.printStructured(elem, elemType)
	}
	d.printfLit("]")
}

func (d *Driver) printAggregate(v ir.Value, dt *types.CADataType) {
	it := d.irType(dt)
	slot := d.fn().b.GenEntryBlockVar(it, "")
	d.fn().b.Store(v, slot)

	switch dt.Struct.Kind {
	case ast.SliceStruct:
		d.printfLit(dt.Struct.Name + " < ")
		d.printFieldAt(slot, dt, 0)
		d.printfLit(", ")
		d.printFieldAt(slot, dt, 1)
		d.printfLit(" >")
	case ast.GeneralTuple, ast.NamedTuple:
		if dt.Struct.Name != "" {
			d.printfLit(dt.Struct.Name + " ")
		}
		d.printfLit("(")
		for i := range dt.Struct.Fields {
			if i > 0 {
				d.printfLit(", ")
			}
			d.printFieldAt(slot, dt, i)
		}
		d.printfLit(")")
	default:
		if dt.Struct.Name != "" {
			d.printfLit(dt.Struct.Name + " ")
		}
		d.printfLit("{")
		for i, f := range dt.Struct.Fields {
			if i > 0 {
				d.printfLit(", ")
			}
			d.printfLit(f.Name + ": ")
			d.printFieldAt(slot, dt, i)
		}
		d.printfLit("}")
	}
}

func (d *Driver) printFieldAt(slot ir.Value, dt *types.CADataType, i int) {
	it := d.irType(dt)
	f := dt.Struct.Fields[i]
	addr := d.fn().b.GEP(slot, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(i)}}, d.irType(f.Type))
	val := d.fn().b.Load(addr, d.irType(f.Type))
	d.printStructured(val, f.Type)
}

func (d *Driver) printRange(v ir.Value, dt *types.CADataType) {
	it := d.irType(dt.Range.Packaged)
	slot := d.fn().b.GenEntryBlockVar(it, "")
	d.fn().b.Store(v, slot)
	idx := 0
	if dt.Range.Start != nil {
		addr := d.fn().b.GEP(slot, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(dt.Range.Start))
		d.printStructured(d.fn().b.Load(addr, d.irType(dt.Range.Start)), dt.Range.Start)
		idx++
	}
	if dt.Range.Inclusive {
		d.printfLit("..=")
	} else {
		d.printfLit("..")
	}
	if dt.Range.End != nil {
		addr := d.fn().b.GEP(slot, it, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(dt.Range.End))
		d.printStructured(d.fn().b.Load(addr, d.irType(dt.Range.End)), dt.Range.End)
	}
}

func (d *Driver) printfLit(text string) {
	ext := d.Runtime.Use("printf")
	declareExtern(d.Mod, ext)
	g := d.Mod.GlobalStringConst(text)
	d.fn().b.Call(ext.Name, ir.I32, []ir.Value{g})
}

func (d *Driver) printfFmt(spec string, v ir.Value) {
	ext := d.Runtime.Use("printf")
	declareExtern(d.Mod, ext)
	g := d.Mod.GlobalStringConst(spec)
	d.fn().b.Call(ext.Name, ir.I32, []ir.Value{g, v})
}

// dbgPrintType lowers `printtype`: one line giving the byte size, and the
// structural dump types.Dump already knows how to render.
func (d *Driver) dbgPrintType(dt *types.CADataType) {
	d.printfLit("size = ")
	d.printfFmt("%lld", ir.ConstInt{T: ir.I64, V: dt.ByteSize})
	d.printfLit(", type:\n" + types.Dump(dt))
}
