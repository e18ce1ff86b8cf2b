package lower

import (
	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/resolver"
	"github.com/ca-lang/cac/symtable"
)

// registerTop registers one top-level declaration into scope, the pass-1
// half of the driver.
func (d *Driver) registerTop(scope *symtable.Scope, decl ast.Node) {
	switch n := decl.(type) {
	case *ast.FnDecl:
		d.registerFnProto(scope, n, false, nil)
	case *ast.FnDef:
		d.registerFnProto(scope, n.Decl, true, n)
		d.registerInnerFns(scope, n.Stmts)
	case *ast.Struct:
		d.registerStruct(scope, n)
	case *ast.TypeDef:
		scope.Insert(n.New, &symtable.AliasEntry{Target: n.Old})
	case *ast.TraitFn:
		d.registerTrait(scope, n)
	case *ast.FnDefImpl:
		d.registerImpl(scope, n)
	}
}

func buildArgList(args []ast.FormalArg, variadic bool) *symtable.ArgList {
	al := &symtable.ArgList{ContainVarg: variadic}
	for _, a := range args {
		al.Append(a.Name, a.TypeID)
	}
	return al
}

// registerFnProto installs (or re-validates against) a function prototype.
// hasBody/def are non-nil when called from an *ast.FnDef; a bare FnDecl
// registers an extern/forward declaration.
func (d *Driver) registerFnProto(scope *symtable.Scope, decl *ast.FnDecl, hasBody bool, def *ast.FnDef) {
	mangled := resolver.MangleFunction(decl.Name)
	kind := symtable.FuncPlain
	if len(decl.GenericTypes) > 0 {
		kind |= symtable.FuncGeneric
	}
	entry := &symtable.FnEntry{
		ArgList:      buildArgList(decl.Args, decl.Variadic),
		RetType:      decl.Ret,
		MangledID:    mangled,
		Kind:         kind,
		GenericTypes: decl.GenericTypes,
		HasBody:      hasBody,
		IsExtern:     decl.IsExtern,
	}
	if existing, ok := scope.LocalLookup(decl.Name); ok {
		prior, ok := existing.(*symtable.FnEntry)
		if !ok {
			diag.Fatalf(decl, "%q redeclared as a function but was already a different kind of symbol", decl.Name)
		}
		if err := resolver.CheckRedeclarationAgrees(prior, entry); err != nil {
			diag.Fatalf(decl, "%v", err)
		}
		if hasBody {
			prior.HasBody = true
		}
		entry = prior
	} else {
		scope.Insert(decl.Name, entry)
	}
	if def != nil {
		d.fnNodes[mangled] = def
	}
}

// registerInnerFns hoists function definitions nested directly in a
// function body's top-level statement list, so forward calls between
// sibling inner functions resolve regardless of source order. Inner
// functions share the flat top-level mangling scheme (resolver.MangleFunction)
// with no qualifying prefix, so an inner function with the same name as
// another function gets the same label and is handled as a redeclaration
// of it.
func (d *Driver) registerInnerFns(scope *symtable.Scope, stmts []ast.Node) {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FnDef); ok {
			d.registerFnProto(scope, fd.Decl, true, fd)
		}
	}
}

func (d *Driver) registerStruct(scope *symtable.Scope, n *ast.Struct) {
	members := &symtable.ArgList{Owner: scope}
	for _, m := range n.Members {
		members.Append(m.Name, m.TypeID)
	}
	entry := &symtable.DataTypeEntry{
		Kind:     n.Kind,
		ID:       "t:" + n.Name,
		Members:  members,
		IDTable:  scope,
		Runables: symtable.NewRunables(),
	}
	scope.Insert(n.Name, entry)
}

func (d *Driver) registerTrait(scope *symtable.Scope, n *ast.TraitFn) {
	info := symtable.TraitNodeInfo{FnNodes: make(map[string]int)}
	items := make([]symtable.TraitItem, len(n.Items))
	for i, it := range n.Items {
		hasDefault := it.Stmts != nil
		items[i] = symtable.TraitItem{
			Name:       it.Decl.Name,
			ArgList:    buildArgList(it.Decl.Args, it.Decl.Variadic),
			RetType:    it.Decl.Ret,
			HasDefault: hasDefault,
			Body:       it,
		}
		info.FnNodes[it.Decl.Name] = i
		if hasDefault {
			info.IDsWithDef = append(info.IDsWithDef, it.Decl.Name)
		} else {
			info.IDsNoDef = append(info.IDsNoDef, it.Decl.Name)
		}
	}
	scope.Insert(n.TraitID, &symtable.TraitDefEntry{TraitID: n.TraitID, Info: info, Items: items})
}

// registerImpl wires a struct-impl or trait-impl block's methods into the
// target struct's Runables table. For a trait impl, any trait method the
// block doesn't override is filled in from the trait's default body,
// reusing that single shared *ast.FnDef node but mangled per-(type,trait)
// and lowered later with `Self` redirected to the implementing type's
// scope via an association overlay (see pass2.go's emitImpl).
func (d *Driver) registerImpl(scope *symtable.Scope, n *ast.FnDefImpl) {
	entry, _, ok := symtable.Getsym(scope, n.Impl.TypeName)
	if !ok {
		diag.Fatalf(n, "impl target type %q is not declared", n.Impl.TypeName)
	}
	dte, ok := entry.(*symtable.DataTypeEntry)
	if !ok {
		diag.Fatalf(n, "%q is not a struct type", n.Impl.TypeName)
	}
	if dte.Runables == nil {
		dte.Runables = symtable.NewRunables()
	}

	overridden := make(map[string]bool, len(n.Items))
	for _, item := range n.Items {
		mangled := resolver.MangleMethod(item.Decl.Name, n.Impl.TypeName, n.Impl.TraitName)
		scope.Insert(mangled, &symtable.FnEntry{
			ArgList:   buildArgList(item.Decl.Args, item.Decl.Variadic),
			RetType:   item.Decl.Ret,
			MangledID: mangled,
			Kind:      symtable.FuncMethod,
			HasBody:   true,
		})
		mi := &symtable.MethodImpl{FnName: item.Decl.Name, Mangled: mangled}
		if n.Impl.TraitName == "" {
			dte.Runables.AddStructMethod(item.Decl.Name, mi)
		} else {
			dte.Runables.AddTraitMethod(n.Impl.TraitName, item.Decl.Name, mi, nil)
			overridden[item.Decl.Name] = true
		}
		d.fnNodes[mangled] = item
	}

	if n.Impl.TraitName == "" {
		return
	}
	traitEntryRaw, _, ok := symtable.Getsym(scope, n.Impl.TraitName)
	if !ok {
		diag.Fatalf(n, "trait %q is not declared", n.Impl.TraitName)
	}
	traitEntry := traitEntryRaw.(*symtable.TraitDefEntry)
	implEntry := &symtable.TraitImplEntry{TypeName: n.Impl.TypeName, TraitName: n.Impl.TraitName, Overridden: overridden}
	if missing := resolver.CheckTraitImplComplete(traitEntry, implEntry); len(missing) > 0 {
		diag.Fatalf(n, "impl of trait %q for %q is missing methods with no default body: %v", n.Impl.TraitName, n.Impl.TypeName, missing)
	}
	for _, name := range traitEntry.Info.IDsWithDef {
		if overridden[name] {
			continue
		}
		item := traitEntry.Items[traitEntry.Info.FnNodes[name]].Body.(*ast.FnDef)
		mangled := resolver.MangleMethod(name, n.Impl.TypeName, n.Impl.TraitName)
		scope.Insert(mangled, &symtable.FnEntry{
			ArgList:   buildArgList(item.Decl.Args, item.Decl.Variadic),
			RetType:   item.Decl.Ret,
			MangledID: mangled,
			Kind:      symtable.FuncMethod,
			HasBody:   true,
		})
		mi := &symtable.MethodImpl{FnName: name, Mangled: mangled}
		assoc := symtable.NewAssoc(symtable.AssocGeneric, dte.IDTable)
		symtable.AssocAddItem(assoc, "Self")
		dte.Runables.AddTraitMethod(n.Impl.TraitName, name, mi, assoc)
		d.fnNodes[mangled] = item
	}
}
