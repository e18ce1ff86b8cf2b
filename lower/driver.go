// Package lower is the CA compiler's lowering driver: the two-pass walk
// from ast.Program to an ir.Module. Pass 1
// (registerTop) walks every top-level declaration installing
// function/struct/trait entries (and struct/trait impl tables) into the
// symbol table, so forward references resolve before any code is emitted.
// Pass 2 (emitTop) walks the same tree again, this time emitting IR.
//
// Grounded on original_source/src/llvm/IR_generator.cpp's walk_pass
// dispatch-by-node-kind and gql/eval.go's per-node eval method dispatch;
// the loop-control/current-function/generic-replacement stacks are
// grounded on and §5's "strictly LIFO" requirement.
package lower

import (
	"fmt"

	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/resolver"
	"github.com/ca-lang/cac/runtime"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// loopFrame is one entry of the loop-control stack: the blocks `break` and
// `continue` jump to, and the loop's label (for labeled break/continue).
type loopFrame struct {
	label      string
	contTarget *ir.BasicBlock
	breakTarget *ir.BasicBlock
}

// funcFrame is one entry of the current-function stack.
type funcFrame struct {
	mangled string
	entry   *symtable.FnEntry
	irFn    *ir.Function
	b       *ir.Builder
	retSlot ir.Reg // zero Reg for a void function
	retType types.ID
	retBB   *ir.BasicBlock

	// labels lazily maps a source label name to its basic block, created on
	// first reference by either the Label statement or a LabelGoto that
	// names it before its definition site has been walked (the
	// LabelHanging case), resolved structurally here since the whole
	// function body is available up front rather than streamed.
	labels map[string]*ir.BasicBlock
}

func (f *funcFrame) labelBlock(m *ir.Module, name string) *ir.BasicBlock {
	if f.labels == nil {
		f.labels = make(map[string]*ir.BasicBlock)
	}
	if bb, ok := f.labels[name]; ok {
		return bb
	}
	bb := f.irFn.AppendBlock(m, "L."+name)
	f.labels[name] = bb
	return bb
}

// Driver holds every piece of state one compilation needs: the type
// cache, the symbol table root, the IR module under construction, the
// runtime-extern tracker, and the LIFO stacks pass 2 threads through
// nested constructs (loop-control, current-function, generic-replacement).
//
// A separate operand stack is not represented as an explicit slice here:
// the original's single `walk` function emulates recursion by hand over
// an explicit value stack, but Go's own call stack already gives package
// lower that recursion for free — every emit* function returns the
// ir.Value it produced directly to its caller. This is a deliberate
// "keep HOW, replace WHAT" judgment call: operands must be produced and
// consumed in strict LIFO order within one expression, and Go's
// return-value threading satisfies that structurally rather than needing
// a slice to enforce it.
type Driver struct {
	Mod      *ir.Module
	Types    *types.Cache
	Resolver resolver.TypeAdapter
	Runtime  *runtime.Registry
	Global   *symtable.Scope

	fnNodes map[string]*ast.FnDef // mangled label -> body, filled by pass 1

	loopStack    []loopFrame
	fnStack      []*funcFrame
	genericStack []*symtable.Assoc
}

// New creates a fresh Driver with an empty module named modName.
func New(modName string) *Driver {
	return &Driver{
		Mod:     ir.NewModule(modName),
		Types:   types.NewCache(),
		Runtime: runtime.NewRegistry(),
		Global:  symtable.NewGlobal(),
		fnNodes: make(map[string]*ast.FnDef),
	}
}

// Compile runs both passes over prog and verifies the resulting module.
func (d *Driver) Compile(prog *ast.Program) error {
	for _, decl := range prog.Decls {
		d.registerTop(d.Global, decl)
	}
	for _, decl := range prog.Decls {
		d.emitTop(d.Global, decl)
	}
	return d.Mod.Verify()
}

// ---- stack helpers (strictly LIFO) ----

func (d *Driver) pushLoop(f loopFrame)  { d.loopStack = append(d.loopStack, f) }
func (d *Driver) popLoop()              { d.loopStack = d.loopStack[:len(d.loopStack)-1] }
func (d *Driver) currentLoop(label string) (loopFrame, bool) {
	if label == "" {
		if len(d.loopStack) == 0 {
			return loopFrame{}, false
		}
		return d.loopStack[len(d.loopStack)-1], true
	}
	for i := len(d.loopStack) - 1; i >= 0; i-- {
		if d.loopStack[i].label == label {
			return d.loopStack[i], true
		}
	}
	return loopFrame{}, false
}

func (d *Driver) pushFunc(f *funcFrame) { d.fnStack = append(d.fnStack, f) }
func (d *Driver) popFunc()              { d.fnStack = d.fnStack[:len(d.fnStack)-1] }
func (d *Driver) currentFunc() *funcFrame {
	if len(d.fnStack) == 0 {
		return nil
	}
	return d.fnStack[len(d.fnStack)-1]
}

func (d *Driver) pushGeneric(a *symtable.Assoc) { d.genericStack = append(d.genericStack, a) }
func (d *Driver) popGeneric()                   { d.genericStack = d.genericStack[:len(d.genericStack)-1] }

// irType converts a resolved CADataType into the ir package's Type,
// recursing through pointer/array/struct shapes.
func (d *Driver) irType(dt *types.CADataType) ir.Type {
	switch dt.Token {
	case types.VOID:
		return ir.Void
	case types.BOOL:
		return ir.I1
	case types.I8, types.U8:
		return ir.I8
	case types.I16, types.U16:
		return ir.I16
	case types.I32, types.U32:
		return ir.I32
	case types.I64, types.U64:
		return ir.I64
	case types.F32:
		return ir.F32
	case types.F64:
		return ir.F64
	case types.CSTRING:
		return ir.PointerType{Elem: ir.I8}
	case types.POINTER:
		return ir.PointerType{Elem: d.irType(dt.Pointer.Kernel)}
	case types.ARRAY:
		return ir.ArrayType{Elem: d.irType(dt.Array.Elem), N: dt.Array.Lengths[0]}
	case types.STRUCT, types.SLICE:
		fields := make([]ir.Type, len(dt.Struct.Fields))
		for i, f := range dt.Struct.Fields {
			fields[i] = d.irType(f.Type)
		}
		return &ir.StructType{Name: dt.Struct.Name, Fields: fields, Packed: dt.Struct.Packed}
	case types.RANGE:
		return d.irType(dt.Range.Packaged)
	default:
		panic(fmt.Sprintf("lower: unhandled type token %v", dt.Token))
	}
}

// resolveType is catype_get_by_name wired to this driver's cache/resolver.
func (d *Driver) resolveType(scope ast.Scope, typeid string) *types.CADataType {
	dt, err := d.Types.GetByName(scope, d.Resolver, typeid)
	if err != nil {
		diag.Fatalf(diag.Unknown, "%v", err)
	}
	return dt
}

func (d *Driver) scopeOf(n ast.Node) *symtable.Scope {
	sc, _ := ast.ScopeOf(n).(*symtable.Scope)
	if sc == nil {
		return d.Global
	}
	return sc
}
