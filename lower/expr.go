package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// emitExpr lowers an expression node to the ir.Value it produces. Operand
// evaluation order follows Go's own evaluation of each case's sub-calls,
// which is exactly the LIFO production/consumption order operand
// stack exists to enforce (see the Driver type's doc in driver.go).
func (d *Driver) emitExpr(scope *symtable.Scope, n ast.Node) ir.Value {
	switch e := n.(type) {
	case *ast.Literal:
		return d.emitLiteral(scope, e)
	case *ast.Id:
		return d.emitLoadID(scope, e)
	case *ast.Expr:
		return d.emitExprOp(scope, e)
	case *ast.Range:
		return d.emitRangeLiteral(scope, e)
	case *ast.StructExpr:
		return d.emitStructExpr(scope, e)
	case *ast.ArrayDef:
		return d.emitArrayDef(scope, e)
	case *ast.Box:
		return d.emitBox(scope, e)
	case *ast.Drop:
		d.emitDrop(scope, e)
		return ir.Reg{}
	case *ast.ArrayItemRight:
		addr, elemType := d.emitArrayIndexAddr(scope, e.Array, e.Index)
		return d.fn().b.Load(addr, d.irType(elemType))
	case *ast.ArrayItemLeft:
		addr, elemType := d.emitArrayIndexAddr(scope, e.Array, e.Index)
		return d.fn().b.Load(addr, d.irType(elemType))
	case *ast.DerefLeft:
		return d.emitExpr(scope, &ast.Expr{Op: ast.OpDeref, Operands: []ast.Node{e.Expr}})
	case *ast.StructFieldOpRight:
		addr, fieldType := d.emitFieldAddr(scope, e.Parent, e.Field)
		return d.fn().b.Load(addr, d.irType(fieldType))
	case *ast.StructFieldOpLeft:
		addr, fieldType := d.emitFieldAddr(scope, e.Parent, e.Field)
		return d.fn().b.Load(addr, d.irType(fieldType))
	case *ast.If:
		return d.emitIfExpr(scope, e)
	case *ast.LexicalBody:
		return d.emitLexicalBody(scope, e)
	default:
		diag.Fatalf(n, "internal error: cannot emit code for %T", n)
		return nil
	}
}

func (d *Driver) fn() *funcFrame { return d.currentFunc() }

func (d *Driver) emitLiteral(scope *symtable.Scope, lit *ast.Literal) ir.Value {
	dt := d.inferLiteralType(scope, lit)
	it := d.irType(dt)
	switch lit.Kind {
	case ast.LitBool:
		return ir.ConstBool{V: lit.I64 != 0}
	case ast.LitF64:
		return ir.ConstFloat{T: it, V: lit.F64}
	case ast.LitCString:
		return d.Mod.GlobalStringConst(lit.Str)
	case ast.LitPointer:
		pt, ok := it.(ir.PointerType)
		if !ok {
			pt = ir.PointerType{Elem: ir.Void}
		}
		return ir.ConstNullPtr{T: pt}
	case ast.LitArray:
		return d.emitArrayDefFromLiteral(scope, lit, dt)
	case ast.LitStruct:
		return d.emitStructLiteral(scope, lit, dt)
	default:
		return ir.ConstInt{T: it, V: lit.I64}
	}
}

func (d *Driver) emitLoadID(scope *symtable.Scope, id *ast.Id) ir.Value {
	addr, dt := d.lookupVarAddr(scope, id.Name, id)
	return d.fn().b.Load(addr, d.irType(dt))
}

// lookupVarAddr resolves name to the address of its storage slot and its
// declared type, honoring the shielding stack's Current binding and any
// Self/generic association overlay on scope.
func (d *Driver) lookupVarAddr(scope *symtable.Scope, name string, at ast.Node) (ir.Value, *types.CADataType) {
	entry, owner, ok := symtable.GetsymST2(scope, name)
	if !ok {
		diag.Fatalf(at, "undefined identifier %q", name)
	}
	ve, ok := entry.(*symtable.VariableEntry)
	if !ok {
		diag.Fatalf(at, "%q is not a variable", name)
	}
	v := ve.Shielding.Current
	addr, ok := v.LLVMValue.(ir.Reg)
	if !ok {
		diag.Fatalf(at, "internal error: %q has no backend storage", name)
	}
	return addr, d.resolveType(owner, v.DataType)
}

func (d *Driver) emitExprOp(scope *symtable.Scope, e *ast.Expr) ir.Value {
	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
		ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		return d.emitArith(scope, e)
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return d.emitCompare(scope, e)
	case ast.OpAndAnd, ast.OpOrOr:
		return d.emitShortCircuit(scope, e)
	case ast.OpNeg:
		return d.emitNeg(scope, e.Operands[0])
	case ast.OpNot:
		v := d.emitExpr(scope, e.Operands[0])
		return d.fn().b.Arith(ir.Xor, v, ir.ConstBool{V: true})
	case ast.OpAs:
		return d.emitAsCast(scope, e)
	case ast.OpSizeof:
		return d.emitSizeof(scope, e)
	case ast.OpTypeof:
		return d.emitExpr(scope, e.Operands[0])
	case ast.OpAddrOf:
		addr, _ := d.emitLValueAddr(scope, e.Operands[0])
		return addr
	case ast.OpDeref:
		ptr := d.emitExpr(scope, e.Operands[0])
		elemDT := d.derefType(scope, e.Operands[0])
		return d.fn().b.Load(ptr, d.irType(elemDT))
	case ast.OpArrayIndex:
		addr, elemType := d.emitArrayIndexAddr(scope, e.Operands[0], e.Operands[1])
		return d.fn().b.Load(addr, d.irType(elemType))
	case ast.OpStructField:
		addr, fieldType := d.emitFieldAddr(scope, e.Operands[0], e.FieldName)
		return d.fn().b.Load(addr, d.irType(fieldType))
	case ast.OpFnCall:
		return d.emitCall(scope, e)
	case ast.OpRange:
		return d.emitExpr(scope, e.Operands[0])
	default:
		diag.Fatalf(e, "internal error: unhandled operator %v", e.Op)
		return nil
	}
}

func (d *Driver) emitLValueAddr(scope *symtable.Scope, n ast.Node) (ir.Value, *types.CADataType) {
	switch e := n.(type) {
	case *ast.Id:
		return d.lookupVarAddr(scope, e.Name, e)
	case *ast.ArrayItemLeft:
		return d.emitArrayIndexAddr(scope, e.Array, e.Index)
	case *ast.DerefLeft:
		ptr := d.emitExpr(scope, e.Expr)
		return ptr, d.derefType(scope, e.Expr)
	case *ast.StructFieldOpLeft:
		return d.emitFieldAddr(scope, e.Parent, e.Field)
	case *ast.Expr:
		switch e.Op {
		case ast.OpArrayIndex:
			return d.emitArrayIndexAddr(scope, e.Operands[0], e.Operands[1])
		case ast.OpDeref:
			ptr := d.emitExpr(scope, e.Operands[0])
			return ptr, d.derefType(scope, e.Operands[0])
		case ast.OpStructField:
			return d.emitFieldAddr(scope, e.Operands[0], e.FieldName)
		}
	}
	diag.Fatalf(n, "expression is not assignable")
	return nil, nil
}

func (d *Driver) emitArrayIndexAddr(scope *symtable.Scope, arrExpr, idxExpr ast.Node) (ir.Value, *types.CADataType) {
	elemType := d.arrayElemType(scope, arrExpr)
	idx := d.emitExpr(scope, idxExpr)
	arrType := d.inferType(scope, arrExpr)
	if arrType.Token == types.SLICE {
		sliceAddr, _ := d.emitLValueAddr(scope, arrExpr)
		dataPtr := d.fn().b.Load(
			d.fn().b.GEP(sliceAddr, d.irType(arrType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: 0}}, d.irType(arrType.Struct.Fields[0].Type)),
			d.irType(arrType.Struct.Fields[0].Type))
		return d.fn().b.GEP(dataPtr, d.irType(elemType), []ir.Value{idx}, d.irType(elemType)), elemType
	}
	addr, _ := d.emitLValueAddr(scope, arrExpr)
	return d.fn().b.GEP(addr, d.irType(arrType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, idx}, d.irType(elemType)), elemType
}

func (d *Driver) emitFieldAddr(scope *symtable.Scope, parentExpr ast.Node, field string) (ir.Value, *types.CADataType) {
	parentType := d.inferType(scope, parentExpr)
	var base ir.Value
	structType := parentType
	if parentType.Token == types.POINTER {
		base = d.emitExpr(scope, parentExpr)
		structType = parentType.Pointer.Kernel
	} else {
		base, _ = d.emitLValueAddr(scope, parentExpr)
	}
	idx, fieldType := fieldIndex(structType, field)
	return d.fn().b.GEP(base, d.irType(structType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(fieldType)), fieldType
}

func fieldIndex(structType *types.CADataType, field string) (int, *types.CADataType) {
	for i, f := range structType.Struct.Fields {
		if f.Name == field {
			return i, f.Type
		}
	}
	panic("lower: unknown field " + field + " on " + structType.Signature)
}

func (d *Driver) emitArith(scope *symtable.Scope, e *ast.Expr) ir.Value {
	lhs := d.emitExpr(scope, e.Operands[0])
	rhs := d.emitExpr(scope, e.Operands[1])
	dt := d.inferType(scope, e.Operands[0])
	if dt.Token.IsFloat() {
		return d.fn().b.Arith(floatBinOp(e.Op), lhs, rhs)
	}
	return d.fn().b.Arith(intBinOp(e.Op, dt.Token.IsSigned()), lhs, rhs)
}

func intBinOp(op ast.Op, signed bool) ir.BinOp {
	switch op {
	case ast.OpAdd:
		return ir.Add
	case ast.OpSub:
		return ir.Sub
	case ast.OpMul:
		return ir.Mul
	case ast.OpDiv:
		if signed {
			return ir.SDiv
		}
		return ir.UDiv
	case ast.OpMod:
		if signed {
			return ir.SRem
		}
		return ir.URem
	case ast.OpBitAnd:
		return ir.And
	case ast.OpBitOr:
		return ir.Or
	case ast.OpBitXor:
		return ir.Xor
	case ast.OpShl:
		return ir.Shl
	case ast.OpShr:
		if signed {
			return ir.AShr
		}
		return ir.LShr
	default:
		panic("lower: not an integer binary operator")
	}
}

func floatBinOp(op ast.Op) ir.BinOp {
	switch op {
	case ast.OpAdd:
		return ir.FAdd
	case ast.OpSub:
		return ir.FSub
	case ast.OpMul:
		return ir.FMul
	case ast.OpDiv:
		return ir.FDiv
	default:
		panic("lower: not a float binary operator")
	}
}

func (d *Driver) emitCompare(scope *symtable.Scope, e *ast.Expr) ir.Value {
	lhs := d.emitExpr(scope, e.Operands[0])
	rhs := d.emitExpr(scope, e.Operands[1])
	dt := d.inferType(scope, e.Operands[0])
	float := dt.Token.IsFloat()
	return d.fn().b.Cmp(float, compareOp(e.Op, float, dt.Token.IsSigned()), lhs, rhs)
}

func compareOp(op ast.Op, float, signed bool) ir.CmpOp {
	if float {
		switch op {
		case ast.OpEq:
			return ir.CmpOEQ
		case ast.OpNe:
			return ir.CmpONE
		case ast.OpLt:
			return ir.CmpOLT
		case ast.OpLe:
			return ir.CmpOLE
		case ast.OpGt:
			return ir.CmpOGT
		default:
			return ir.CmpOGE
		}
	}
	switch op {
	case ast.OpEq:
		return ir.CmpEQ
	case ast.OpNe:
		return ir.CmpNE
	case ast.OpLt:
		if signed {
			return ir.CmpSLT
		}
		return ir.CmpULT
	case ast.OpLe:
		if signed {
			return ir.CmpSLE
		}
		return ir.CmpULE
	case ast.OpGt:
		if signed {
			return ir.CmpSGT
		}
		return ir.CmpUGT
	default:
		if signed {
			return ir.CmpSGE
		}
		return ir.CmpUGE
	}
}

// emitShortCircuit lowers && and || with real control flow (not a bitwise
// and/or on i1), so the right operand is never evaluated once the left one
// already decides the result.
func (d *Driver) emitShortCircuit(scope *symtable.Scope, e *ast.Expr) ir.Value {
	f := d.fn()
	lhs := d.emitExpr(scope, e.Operands[0])
	rhsBB := f.irFn.AppendBlock(d.Mod, "")
	joinBB := f.irFn.AppendBlock(d.Mod, "")
	shortCircuitBB := f.b.Block()
	if e.Op == ast.OpAndAnd {
		f.b.CondBr(lhs, rhsBB, joinBB)
	} else {
		f.b.CondBr(lhs, joinBB, rhsBB)
	}
	f.b.SetInsertPoint(rhsBB)
	rhs := d.emitExpr(scope, e.Operands[1])
	rhsEndBB := f.b.Block()
	f.b.Br(joinBB)
	f.b.SetInsertPoint(joinBB)
	return f.b.Phi(ir.I1, []ir.PhiIncoming{
		{Value: ir.ConstBool{V: e.Op == ast.OpOrOr}, Block: shortCircuitBB},
		{Value: rhs, Block: rhsEndBB},
	})
}

func (d *Driver) emitNeg(scope *symtable.Scope, operand ast.Node) ir.Value {
	v := d.emitExpr(scope, operand)
	dt := d.inferType(scope, operand)
	if dt.Token.IsFloat() {
		return d.fn().b.Arith(ir.FSub, ir.ConstFloat{T: v.Type(), V: 0}, v)
	}
	return d.fn().b.Arith(ir.Sub, ir.ConstInt{T: v.Type(), V: 0}, v)
}

func (d *Driver) emitAsCast(scope *symtable.Scope, e *ast.Expr) ir.Value {
	v := d.emitExpr(scope, e.Operands[0])
	from := d.inferType(scope, e.Operands[0])
	to := d.resolveType(scope, e.AsType)
	op, err := types.CastRule(from, to)
	if err != nil {
		diag.Fatalf(e, "%v", err)
	}
	it := d.irType(to)
	if op == types.CastNone {
		return v
	}
	return d.fn().b.Cast(irCastKind(op), v, it)
}

func irCastKind(op types.CastOp) ir.CastKind {
	switch op {
	case types.CastIntTrunc:
		return ir.Trunc
	case types.CastIntSExt:
		return ir.SExt
	case types.CastIntZExt:
		return ir.ZExt
	case types.CastIntToFloat:
		return ir.SIToFP
	case types.CastUIntToFloat:
		return ir.UIToFP
	case types.CastFloatToInt:
		return ir.FPToSI
	case types.CastFloatToUInt:
		return ir.FPToUI
	case types.CastFloatTrunc:
		return ir.FPTrunc
	case types.CastFloatExt:
		return ir.FPExt
	case types.CastIntToBool, types.CastBoolToInt:
		return ir.ZExt
	default:
		return ir.Bitcast
	}
}

func (d *Driver) emitSizeof(scope *symtable.Scope, e *ast.Expr) ir.Value {
	dt := d.resolveType(scope, e.AsType)
	size := dt.ByteSize
	if size < 0 {
		size = 0
	}
	return ir.ConstInt{T: ir.I64, V: size}
}

// emitCall emits an OpFnCall's actual argument list and the call
// instruction itself. A *ast.MethodRecv in Operands[0] (a "recv.method(...)"
// call) emits the receiver expression as the implicit first argument —
// the same self-as-first-argument convention
// original_source/src/llvm/IR_generator.cpp uses (argv.push_back(self_value)
// ahead of the explicit arguments) — while a Domain/DomainAs marker
// contributes no argument value at all, since those two forms name their
// callee directly rather than through a receiver.
func (d *Driver) emitCall(scope *symtable.Scope, call *ast.Expr) ir.Value {
	fe := d.resolveCallee(scope, call)
	args := make([]ir.Value, 0, len(call.Operands))
	for _, o := range call.Operands {
		switch recv := o.(type) {
		case *ast.Domain, *ast.DomainAs:
			continue
		case *ast.MethodRecv:
			args = append(args, d.emitExpr(scope, recv.Recv))
		default:
			args = append(args, d.emitExpr(scope, o))
		}
	}
	retType := d.resolveType(scope, orVoid(fe.RetType))
	return d.fn().b.Call(fe.MangledID, d.irType(retType), args)
}

func (d *Driver) emitStructExpr(scope *symtable.Scope, se *ast.StructExpr) ir.Value {
	dt := d.resolveType(scope, "t:"+se.TypeName)
	slot := d.fn().b.GenEntryBlockVar(d.irType(dt), "")
	for _, item := range se.Items {
		idx, fieldType := fieldIndex(dt, item.Name)
		v := d.emitExpr(scope, item.Expr)
		addr := d.fn().b.GEP(slot, d.irType(dt), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(fieldType))
		d.fn().b.Store(v, addr)
	}
	return d.fn().b.Load(slot, d.irType(dt))
}

func (d *Driver) emitStructLiteral(scope *symtable.Scope, lit *ast.Literal, dt *types.CADataType) ir.Value {
	slot := d.fn().b.GenEntryBlockVar(d.irType(dt), "")
	for i, fieldExpr := range lit.Elems {
		name := ""
		if i < len(lit.Fields) {
			name = lit.Fields[i]
		}
		var idx int
		var fieldType *types.CADataType
		if name != "" {
			idx, fieldType = fieldIndex(dt, name)
		} else {
			idx, fieldType = i, dt.Struct.Fields[i].Type
		}
		v := d.emitExpr(scope, fieldExpr)
		addr := d.fn().b.GEP(slot, d.irType(dt), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(fieldType))
		d.fn().b.Store(v, addr)
	}
	return d.fn().b.Load(slot, d.irType(dt))
}

func (d *Driver) emitArrayDef(scope *symtable.Scope, ad *ast.ArrayDef) ir.Value {
	elem := d.inferType(scope, firstArrayElem(ad))
	count := ad.Count
	if ad.Repeat == nil {
		count = uint64(len(ad.Elems))
	}
	arrType := types.GetOrBuildArray(d.Types, elem, count)
	slot := d.fn().b.GenEntryBlockVar(d.irType(arrType), "")
	if ad.Repeat != nil {
		v := d.emitExpr(scope, ad.Repeat)
		for i := uint64(0); i < count; i++ {
			addr := d.fn().b.GEP(slot, d.irType(arrType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I64, V: int64(i)}}, d.irType(elem))
			d.fn().b.Store(v, addr)
		}
	} else {
		for i, el := range ad.Elems {
			v := d.emitExpr(scope, el)
			addr := d.fn().b.GEP(slot, d.irType(arrType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I64, V: int64(i)}}, d.irType(elem))
			d.fn().b.Store(v, addr)
		}
	}
	return d.fn().b.Load(slot, d.irType(arrType))
}

func (d *Driver) emitArrayDefFromLiteral(scope *symtable.Scope, lit *ast.Literal, dt *types.CADataType) ir.Value {
	slot := d.fn().b.GenEntryBlockVar(d.irType(dt), "")
	for i, el := range lit.Elems {
		v := d.emitExpr(scope, el)
		addr := d.fn().b.GEP(slot, d.irType(dt), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I64, V: int64(i)}}, d.irType(dt.Array.Elem))
		d.fn().b.Store(v, addr)
	}
	return d.fn().b.Load(slot, d.irType(dt))
}

// emitBox heap-allocates Expr's value via the GC_malloc runtime extern
// and returns a pointer to it.
func (d *Driver) emitBox(scope *symtable.Scope, bx *ast.Box) ir.Value {
	v := d.emitExpr(scope, bx.Expr)
	dt := d.inferType(scope, bx.Expr)
	ext := d.Runtime.Use("GC_malloc")
	declareExtern(d.Mod, ext)
	size := dt.ByteSize
	if size < 0 {
		size = 8
	}
	raw := d.fn().b.Call(ext.Name, ir.PointerType{Elem: ir.I8}, []ir.Value{ir.ConstInt{T: ir.I64, V: size}})
	ptrType := types.GetOrBuildPointer(d.Types, dt, types.AllocHeap)
	typed := d.fn().b.Cast(ir.Bitcast, raw, d.irType(ptrType))
	d.fn().b.Store(v, typed)
	return typed
}

// emitDrop frees a previously-boxed value via GC_free.
func (d *Driver) emitDrop(scope *symtable.Scope, dr *ast.Drop) {
	addr, dt := d.lookupVarAddr(scope, dr.Name, dr)
	v := d.fn().b.Load(addr, d.irType(dt))
	ext := d.Runtime.Use("GC_free")
	declareExtern(d.Mod, ext)
	raw := d.fn().b.Cast(ir.Bitcast, v, ir.PointerType{Elem: ir.I8})
	d.fn().b.Call(ext.Name, ir.Void, []ir.Value{raw})
}

func (d *Driver) emitRangeLiteral(scope *symtable.Scope, r *ast.Range) ir.Value {
	dt := d.inferRangeType(scope, r)
	slot := d.fn().b.GenEntryBlockVar(d.irType(dt.Range.Packaged), "")
	idx := 0
	if r.Start != nil {
		v := d.emitExpr(scope, r.Start)
		addr := d.fn().b.GEP(slot, d.irType(dt.Range.Packaged), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(dt.Range.Start))
		d.fn().b.Store(v, addr)
		idx++
	}
	if r.End != nil {
		v := d.emitExpr(scope, r.End)
		addr := d.fn().b.GEP(slot, d.irType(dt.Range.Packaged), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, d.irType(dt.Range.End))
		d.fn().b.Store(v, addr)
	}
	return d.fn().b.Load(slot, d.irType(dt.Range.Packaged))
}

func (d *Driver) emitLexicalBody(scope *symtable.Scope, body *ast.LexicalBody) ir.Value {
	inner := symtable.PushNew(scope)
	if n := len(body.Stmts); n > 0 {
		for _, s := range body.Stmts[:n-1] {
			d.emitStmt(inner, s)
		}
		return d.emitExpr(inner, body.Stmts[n-1])
	}
	return ir.Reg{}
}
