package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// emitStmt lowers one statement node for effect, dispatching on its
// concrete AST type the same way original_source/src/llvm/IR_generator.cpp's
// walk_pass switches on node kind.
func (d *Driver) emitStmt(scope *symtable.Scope, n ast.Node) {
	switch s := n.(type) {
	case *ast.LetBind:
		d.emitLetBind(scope, s)
	case *ast.Assign:
		d.emitAssign(scope, s)
	case *ast.Ret:
		d.emitRet(scope, s)
	case *ast.DbgPrint:
		d.emitDbgPrint(scope, s)
	case *ast.DbgPrintType:
		d.emitDbgPrintType(scope, s)
	case *ast.If:
		d.emitIfStmt(scope, s)
	case *ast.While:
		d.emitWhile(scope, s)
	case *ast.Loop:
		d.emitLoop(scope, s)
	case *ast.For:
		d.emitFor(scope, s)
	case *ast.Break:
		d.emitBreak(s)
	case *ast.Continue:
		d.emitContinue(s)
	case *ast.Label:
		d.emitLabel(scope, s)
	case *ast.LabelGoto:
		d.emitLabelGoto(s)
	case *ast.LexicalBody:
		d.emitLexicalBodyStmt(scope, s)
	case *ast.StmtList:
		for _, stmt := range s.Stmts {
			d.emitStmt(scope, stmt)
		}
	case *ast.Drop:
		d.emitDrop(scope, s)
	case *ast.FnDef:
		// inner functions are emitted separately by emitInnerFns
	case *ast.Empty:
	default:
		d.emitExpr(scope, n)
	}
}

// emitLetBind evaluates Expr once into a fresh entry-block slot, then
// destructures Pattern against that single slot (see pattern.go). Binding
// every nested name to an address into the one slot, rather than a copy
// per name, is what lets a `let (a, b) = pair;` treat a and b as genuine
// lvalues.
func (d *Driver) emitLetBind(scope *symtable.Scope, n *ast.LetBind) {
	if zv, ok := n.Expr.(*ast.VarDefZeroValue); ok {
		d.emitZeroInitLet(scope, n, zv)
		return
	}
	v := d.emitExpr(scope, n.Expr)
	dt := d.inferType(scope, n.Expr)
	if n.TypeID != "" {
		dt = d.resolveType(scope, n.TypeID)
	}
	symtable.VarshieldingRotateCAPattern(scope, n.Pattern, true)
	slot := d.fn().b.GenEntryBlockVar(d.irType(dt), "")
	d.fn().b.Store(v, slot)
	symtable.VarshieldingRotateCAPattern(scope, n.Pattern, false)
	d.bindPattern(scope, n.Pattern, slot, dt, n.Mutable)
}

// emitZeroInitLet handles "let x: T = __zero_init__;"/"__noinit__;": its
// type can only come from the explicit annotation, since there is no RHS
// expression to infer one from. __zero_init__ memsets the slot; __noinit__
// leaves its contents undefined, a deliberate behavioral distinction
// recorded as an Open Question decision in DESIGN.md.
func (d *Driver) emitZeroInitLet(scope *symtable.Scope, n *ast.LetBind, zv *ast.VarDefZeroValue) {
	if n.TypeID == "" {
		diag.Fatalf(n, "%s requires an explicit type annotation", zv.String())
	}
	dt := d.resolveType(scope, n.TypeID)
	it := d.irType(dt)
	symtable.VarshieldingRotateCAPattern(scope, n.Pattern, true)
	slot := d.fn().b.GenEntryBlockVar(it, "")
	symtable.VarshieldingRotateCAPattern(scope, n.Pattern, false)
	if zv.Which == ast.ZeroFill {
		size := dt.ByteSize
		if size < 0 {
			size = 0
		}
		d.fn().b.Memset(slot, ir.ConstInt{T: ir.I8, V: 0}, ir.ConstInt{T: ir.I64, V: size}, 1)
	}
	d.bindPattern(scope, n.Pattern, slot, dt, n.Mutable)
}

func (d *Driver) emitAssign(scope *symtable.Scope, n *ast.Assign) {
	addr, dt := d.emitLValueAddr(scope, n.LHS)
	rhs := d.emitExpr(scope, n.Expr)
	if n.Op == ast.AssignPlain {
		d.fn().b.Store(rhs, addr)
		return
	}
	cur := d.fn().b.Load(addr, d.irType(dt))
	var v ir.Value
	if dt.Token.IsFloat() {
		v = d.fn().b.Arith(compoundFloatOp(n.Op), cur, rhs)
	} else {
		v = d.fn().b.Arith(compoundIntOp(n.Op, dt.Token.IsSigned()), cur, rhs)
	}
	d.fn().b.Store(v, addr)
}

func compoundFloatOp(op ast.AssignOp) ir.BinOp {
	switch op {
	case ast.AssignAdd:
		return ir.FAdd
	case ast.AssignSub:
		return ir.FSub
	case ast.AssignMul:
		return ir.FMul
	case ast.AssignDiv:
		return ir.FDiv
	default:
		panic("lower: compound assignment operator not valid on a float operand")
	}
}

func compoundIntOp(op ast.AssignOp, signed bool) ir.BinOp {
	switch op {
	case ast.AssignAdd:
		return ir.Add
	case ast.AssignSub:
		return ir.Sub
	case ast.AssignMul:
		return ir.Mul
	case ast.AssignDiv:
		if signed {
			return ir.SDiv
		}
		return ir.UDiv
	case ast.AssignMod:
		if signed {
			return ir.SRem
		}
		return ir.URem
	case ast.AssignBitAnd:
		return ir.And
	case ast.AssignBitOr:
		return ir.Or
	case ast.AssignBitXor:
		return ir.Xor
	case ast.AssignShl:
		return ir.Shl
	case ast.AssignShr:
		if signed {
			return ir.AShr
		}
		return ir.LShr
	default:
		panic("lower: not a compound assignment operator")
	}
}

func (d *Driver) emitRet(scope *symtable.Scope, n *ast.Ret) {
	f := d.fn()
	if n.Expr != nil {
		v := d.emitExpr(scope, n.Expr)
		f.b.Store(v, f.retSlot)
	}
	f.b.Br(f.retBB)
}

func (d *Driver) emitLabel(scope *symtable.Scope, n *ast.Label) {
	f := d.fn()
	bb := f.labelBlock(d.Mod, n.Name)
	if cur := f.b.Block(); cur != nil && !cur.Sealed() {
		f.b.Br(bb)
	}
	f.b.SetInsertPoint(bb)
}

func (d *Driver) emitLabelGoto(n *ast.LabelGoto) {
	f := d.fn()
	bb := f.labelBlock(d.Mod, n.Name)
	f.b.Br(bb)
}

func (d *Driver) emitLexicalBodyStmt(scope *symtable.Scope, n *ast.LexicalBody) {
	inner := symtable.PushNew(scope)
	for _, stmt := range n.Stmts {
		d.emitStmt(inner, stmt)
	}
}

func (d *Driver) emitDbgPrint(scope *symtable.Scope, n *ast.DbgPrint) {
	dt := d.inferType(scope, n.Expr)
	v := d.emitExpr(scope, n.Expr)
	d.dbgPrintValue(scope, v, dt)
}

func (d *Driver) emitDbgPrintType(scope *symtable.Scope, n *ast.DbgPrintType) {
	var dt *types.CADataType
	if n.Expr != nil {
		dt = d.inferType(scope, n.Expr)
	} else {
		dt = d.resolveType(scope, n.TypeID)
	}
	d.dbgPrintType(dt)
}
