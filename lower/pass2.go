package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/ir"
	"github.com/ca-lang/cac/symtable"
)

// emitTop walks one top-level declaration in pass 2, emitting IR for
// function bodies (struct/type/trait declarations carry no code of their
// own — they were fully consumed in pass 1).
func (d *Driver) emitTop(scope *symtable.Scope, decl ast.Node) {
	switch n := decl.(type) {
	case *ast.FnDef:
		d.emitFunction(scope, n.Decl.Name, n)
		d.emitInnerFns(scope, n.Stmts)
	case *ast.FnDefImpl:
		d.emitImpl(scope, n)
	}
}

func (d *Driver) emitInnerFns(scope *symtable.Scope, stmts []ast.Node) {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FnDef); ok {
			d.emitFunction(scope, fd.Decl.Name, fd)
		}
	}
}

// emitImpl emits every method body registered by pass 1's registerImpl,
// both the ones the impl block wrote itself and the trait-default bodies
// inherited without an override (found via the struct's Runables table
// rather than by re-deriving the mangled label here).
func (d *Driver) emitImpl(scope *symtable.Scope, n *ast.FnDefImpl) {
	entry, _, ok := symtable.Getsym(scope, n.Impl.TypeName)
	if !ok {
		return
	}
	dte := entry.(*symtable.DataTypeEntry)
	for _, item := range n.Items {
		mi, _, _ := dte.Runables.Lookup(item.Decl.Name)
		mangled := item.Decl.Name
		if mi != nil {
			mangled = mi.Mangled
		}
		d.emitFunctionAs(scope, mangled, item)
	}
	if n.Impl.TraitName == "" {
		return
	}
	byName := dte.Runables.MethodsInTraits[n.Impl.TraitName]
	for name, mi := range byName {
		def, ok := d.fnNodes[mi.Mangled]
		if !ok {
			continue
		}
		if _, overridden := findItem(n.Items, name); overridden {
			continue
		}
		assoc := dte.Runables.AssocByTrait[n.Impl.TraitName][name]
		d.emitFunctionWithAssoc(scope, mi.Mangled, def, assoc)
	}
}

func findItem(items []*ast.FnDef, name string) (*ast.FnDef, bool) {
	for _, it := range items {
		if it.Decl.Name == name {
			return it, true
		}
	}
	return nil, false
}

// emitFunction looks up name's already-registered FnEntry (by plain name)
// and emits its body under its mangled label.
func (d *Driver) emitFunction(scope *symtable.Scope, name string, def *ast.FnDef) {
	entry, _, ok := symtable.Getsym(scope, name)
	if !ok {
		diag.Fatalf(def, "internal error: function %q has no prototype", name)
	}
	fe := entry.(*symtable.FnEntry)
	d.emitFunctionAs(scope, fe.MangledID, def)
}

func (d *Driver) emitFunctionAs(scope *symtable.Scope, mangled string, def *ast.FnDef) {
	d.emitFunctionWithAssoc(scope, mangled, def, nil)
}

// emitFunctionWithAssoc emits def's body as the function registered under
// mangled. assoc, when non-nil, is installed on the body's scope before
// emission so a shared trait-default body resolves `Self` against the
// implementing type rather than the trait's own declaration scope.
func (d *Driver) emitFunctionWithAssoc(scope *symtable.Scope, mangled string, def *ast.FnDef, assoc *symtable.Assoc) {
	entry, ok := scope.LocalLookup(mangled)
	if !ok {
		var found bool
		entry, _, found = symtable.Getsym(scope, mangled)
		if !found {
			diag.Fatalf(def, "internal error: no prototype registered for %q", mangled)
		}
	}
	fe := entry.(*symtable.FnEntry)
	if fe.IsExtern || !fe.HasBody {
		return
	}

	declScope := d.scopeOf(def)
	bodyScope := symtable.PushNew(declScope)
	if assoc != nil {
		bodyScope.SetAssoc(assoc)
	}

	retTypeID := orVoid(fe.RetType)
	retDT := d.resolveType(bodyScope, retTypeID)
	paramTypes := make([]ir.Type, len(fe.ArgList.Types))
	irParams := make([]ir.Param, len(fe.ArgList.Types))
	for i, t := range fe.ArgList.Types {
		pdt := d.resolveType(bodyScope, t)
		paramTypes[i] = d.irType(pdt)
		irParams[i] = ir.Param{Name: fe.ArgList.Names[i], T: paramTypes[i]}
	}
	ft := &ir.FuncType{Ret: d.irType(retDT), Params: paramTypes, Vararg: fe.ArgList.ContainVarg}
	irFn := d.Mod.NewFunction(mangled, ft, irParams, ir.External, false)
	entryBB := irFn.AppendBlock(d.Mod, "entry")
	b := ir.NewBuilder(d.Mod, irFn, entryBB)

	frame := &funcFrame{mangled: mangled, entry: fe, irFn: irFn, b: b, retType: retTypeID}
	isVoid := retDT.Signature == "t:void"
	if !isVoid {
		frame.retSlot = b.GenEntryBlockVar(ft.Ret, "retval")
	}
	frame.retBB = irFn.AppendBlock(d.Mod, "ret")
	d.pushFunc(frame)

	for i, name := range fe.ArgList.Names {
		slot := b.GenEntryBlockVar(paramTypes[i], name+".addr")
		b.Store(ir.Reg{Name: name, T: paramTypes[i]}, slot)
		bodyScope.Insert(name, symtable.NewVariableEntry(&symtable.CAVariable{
			Name: name, DataType: fe.ArgList.Types[i], LLVMValue: slot,
		}))
	}

	for _, stmt := range def.Stmts {
		d.emitStmt(bodyScope, stmt)
	}
	if cur := b.Block(); cur != nil && !cur.Sealed() {
		b.Br(frame.retBB)
	}
	b.SetInsertPoint(frame.retBB)
	if isVoid {
		b.RetVoid()
	} else {
		v := b.Load(frame.retSlot, ft.Ret)
		b.Ret(v)
	}
	d.popFunc()
}

func orVoid(typeid string) string {
	if typeid == "" {
		return "t:void"
	}
	return typeid
}
