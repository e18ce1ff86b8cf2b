package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// emitIfStmt lowers an `if` used as a statement: each branch is emitted for
// effect only, and control simply rejoins after the last one, with no
// common-type merge required.
func (d *Driver) emitIfStmt(scope *symtable.Scope, n *ast.If) {
	f := d.fn()
	joinBB := f.irFn.AppendBlock(d.Mod, "")
	d.emitIfChain(scope, n, joinBB, func(s *symtable.Scope, body ast.Node) {
		d.emitStmt(s, body)
	})
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(joinBB)
	}
	f.b.SetInsertPoint(joinBB)
}

// emitIfExpr lowers an `if` used as an expression: every branch's tail value
// is stored into a common slot before rejoining, so the merge doesn't
// depend on tracking which predecessor blocks reach the join in which order
// (the complication a true phi node would otherwise need to handle for an
// arbitrarily long else-if chain).
func (d *Driver) emitIfExpr(scope *symtable.Scope, n *ast.If) ir.Value {
	f := d.fn()
	dt := d.inferType(scope, n)
	it := d.irType(dt)
	slot := f.b.GenEntryBlockVar(it, "")
	joinBB := f.irFn.AppendBlock(d.Mod, "")
	d.emitIfChain(scope, n, joinBB, func(s *symtable.Scope, body ast.Node) {
		v := d.emitExpr(s, body)
		f.b.Store(v, slot)
	})
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(joinBB)
	}
	f.b.SetInsertPoint(joinBB)
	return f.b.Load(slot, it)
}

// emitIfChain walks an If's Conds/Bodies/Else chain, invoking emitBranch on
// every branch body in its own block and wiring each conditional body to
// join once it falls through. The else body (or, with no else, the last
// false edge) is left open for the caller to close.
func (d *Driver) emitIfChain(scope *symtable.Scope, n *ast.If, join *ir.BasicBlock, emitBranch func(*symtable.Scope, ast.Node)) {
	f := d.fn()
	for i, cond := range n.Conds {
		condVal := d.emitExpr(scope, cond)
		thenBB := f.irFn.AppendBlock(d.Mod, "")
		elseBB := f.irFn.AppendBlock(d.Mod, "")
		f.b.CondBr(condVal, thenBB, elseBB)

		f.b.SetInsertPoint(thenBB)
		emitBranch(symtable.PushNew(scope), n.Bodies[i])
		if cur := f.b.Block(); cur != nil && !cur.Sealed() {
			f.b.Br(join)
		}

		f.b.SetInsertPoint(elseBB)
	}
	if n.Else != nil {
		emitBranch(symtable.PushNew(scope), n.Else)
	}
}

func (d *Driver) emitWhile(scope *symtable.Scope, n *ast.While) {
	f := d.fn()
	condBB := f.irFn.AppendBlock(d.Mod, "")
	bodyBB := f.irFn.AppendBlock(d.Mod, "")
	endBB := f.irFn.AppendBlock(d.Mod, "")

	f.b.Br(condBB)
	f.b.SetInsertPoint(condBB)
	cond := d.emitExpr(scope, n.Cond)
	f.b.CondBr(cond, bodyBB, endBB)

	f.b.SetInsertPoint(bodyBB)
	d.pushLoop(loopFrame{label: n.Label, contTarget: condBB, breakTarget: endBB})
	d.emitStmt(symtable.PushNew(scope), n.Body)
	d.popLoop()
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(condBB)
	}

	f.b.SetInsertPoint(endBB)
}

func (d *Driver) emitLoop(scope *symtable.Scope, n *ast.Loop) {
	f := d.fn()
	bodyBB := f.irFn.AppendBlock(d.Mod, "")
	endBB := f.irFn.AppendBlock(d.Mod, "")

	f.b.Br(bodyBB)
	f.b.SetInsertPoint(bodyBB)
	d.pushLoop(loopFrame{label: n.Label, contTarget: bodyBB, breakTarget: endBB})
	d.emitStmt(symtable.PushNew(scope), n.Body)
	d.popLoop()
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(bodyBB)
	}

	f.b.SetInsertPoint(endBB)
}

// emitFor lowers `for v in list { body }` over an array value or one of the
// bounded/unbounded range forms. A Full range, or any
// range form lacking a start bound, has nothing to iterate from and is a
// type error rather than silently doing nothing — the Open Question
// decision recorded in DESIGN.md.
func (d *Driver) emitFor(scope *symtable.Scope, n *ast.For) {
	listType := d.inferType(scope, n.List)
	switch listType.Token {
	case types.ARRAY:
		d.emitForArray(scope, n, listType)
	case types.RANGE:
		d.emitForRange(scope, n, listType)
	default:
		diag.Fatalf(n, "cannot iterate over a value of type %s", listType.Signature)
	}
}

func (d *Driver) emitForArray(scope *symtable.Scope, n *ast.For, arrType *types.CADataType) {
	f := d.fn()
	elemType := arrType.Array.Elem
	length := arrType.Array.Lengths[0]

	addr, _ := d.emitLValueAddr(scope, n.List)
	idxSlot := f.b.GenEntryBlockVar(ir.I64, "")
	f.b.Store(ir.ConstInt{T: ir.I64, V: 0}, idxSlot)

	condBB := f.irFn.AppendBlock(d.Mod, "")
	bodyBB := f.irFn.AppendBlock(d.Mod, "")
	stepBB := f.irFn.AppendBlock(d.Mod, "")
	endBB := f.irFn.AppendBlock(d.Mod, "")

	f.b.Br(condBB)
	f.b.SetInsertPoint(condBB)
	idx := f.b.Load(idxSlot, ir.I64)
	cmp := f.b.Cmp(false, ir.CmpULT, idx, ir.ConstInt{T: ir.I64, V: int64(length)})
	f.b.CondBr(cmp, bodyBB, endBB)

	f.b.SetInsertPoint(bodyBB)
	elemAddr := f.b.GEP(addr, d.irType(arrType), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, idx}, d.irType(elemType))
	loopScope := symtable.PushNew(scope)
	loopScope.Insert(n.Var, symtable.NewVariableEntry(&symtable.CAVariable{Name: n.Var, DataType: elemType.Signature, LLVMValue: elemAddr}))
	d.pushLoop(loopFrame{label: n.Label, contTarget: stepBB, breakTarget: endBB})
	d.emitStmt(loopScope, n.Body)
	d.popLoop()
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(stepBB)
	}

	f.b.SetInsertPoint(stepBB)
	next := f.b.Arith(ir.Add, f.b.Load(idxSlot, ir.I64), ir.ConstInt{T: ir.I64, V: 1})
	f.b.Store(next, idxSlot)
	f.b.Br(condBB)

	f.b.SetInsertPoint(endBB)
}

func (d *Driver) emitForRange(scope *symtable.Scope, n *ast.For, rt *types.CADataType) {
	if rt.Range.Start == nil {
		diag.Fatalf(n, "range used in a for-loop must have a start bound")
	}
	f := d.fn()
	elemType := rt.Range.Start
	it := d.irType(elemType)
	signed := elemType.Token.IsSigned()

	rangeVal := d.emitExpr(scope, n.List)
	pkgIT := d.irType(rt.Range.Packaged)
	pkgSlot := f.b.GenEntryBlockVar(pkgIT, "")
	f.b.Store(rangeVal, pkgSlot)
	startField := f.b.GEP(pkgSlot, pkgIT, []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: 0}}, it)
	startAddr := f.b.GenEntryBlockVar(it, "")
	f.b.Store(f.b.Load(startField, it), startAddr)
	idxSlot := startAddr

	var endVal ir.Value
	var cmpOp ir.CmpOp
	if rt.Range.End != nil {
		if signed {
			cmpOp = ir.CmpSLT
			if rt.Range.Inclusive {
				cmpOp = ir.CmpSLE
			}
		} else {
			cmpOp = ir.CmpULT
			if rt.Range.Inclusive {
				cmpOp = ir.CmpULE
			}
		}
	}

	condBB := f.irFn.AppendBlock(d.Mod, "")
	bodyBB := f.irFn.AppendBlock(d.Mod, "")
	stepBB := f.irFn.AppendBlock(d.Mod, "")
	endBB := f.irFn.AppendBlock(d.Mod, "")

	f.b.Br(condBB)
	f.b.SetInsertPoint(condBB)
	if rt.Range.End != nil {
		cur := f.b.Load(idxSlot, it)
		// The range expression itself is evaluated once, before the loop;
		// its end field is re-extracted from that captured value on every
		// pass through the loop header.
		endVal = d.rangeEndConst(rangeVal, rt, it)
		cmp := f.b.Cmp(false, cmpOp, cur, endVal)
		f.b.CondBr(cmp, bodyBB, endBB)
	} else {
		f.b.Br(bodyBB)
	}

	f.b.SetInsertPoint(bodyBB)
	cur := f.b.Load(idxSlot, it)
	loopScope := symtable.PushNew(scope)
	varSlot := f.b.GenEntryBlockVar(it, "")
	f.b.Store(cur, varSlot)
	loopScope.Insert(n.Var, symtable.NewVariableEntry(&symtable.CAVariable{Name: n.Var, DataType: elemType.Signature, LLVMValue: varSlot}))
	d.pushLoop(loopFrame{label: n.Label, contTarget: stepBB, breakTarget: endBB})
	d.emitStmt(loopScope, n.Body)
	d.popLoop()
	if b := f.b.Block(); b != nil && !b.Sealed() {
		f.b.Br(stepBB)
	}

	f.b.SetInsertPoint(stepBB)
	next := f.b.Arith(ir.Add, f.b.Load(idxSlot, it), ir.ConstInt{T: it, V: 1})
	f.b.Store(next, idxSlot)
	f.b.Br(condBB)

	f.b.SetInsertPoint(endBB)
}

// rangeEndConst extracts the `end` field out of the Packaged general-tuple
// value a Range expression evaluates to.
func (d *Driver) rangeEndConst(rangeVal ir.Value, rt *types.CADataType, it ir.Type) ir.Value {
	f := d.fn()
	slot := f.b.GenEntryBlockVar(d.irType(rt.Range.Packaged), "")
	f.b.Store(rangeVal, slot)
	idx := 0
	if rt.Range.Start != nil {
		idx++
	}
	endAddr := f.b.GEP(slot, d.irType(rt.Range.Packaged), []ir.Value{ir.ConstInt{T: ir.I32, V: 0}, ir.ConstInt{T: ir.I32, V: int64(idx)}}, it)
	return f.b.Load(endAddr, it)
}

func (d *Driver) emitBreak(n *ast.Break) {
	lf, ok := d.currentLoop(n.Label)
	if !ok {
		diag.Fatalf(n, "break outside of a loop")
	}
	d.fn().b.Br(lf.breakTarget)
}

func (d *Driver) emitContinue(n *ast.Continue) {
	lf, ok := d.currentLoop(n.Label)
	if !ok {
		diag.Fatalf(n, "continue outside of a loop")
	}
	d.fn().b.Br(lf.contTarget)
}
