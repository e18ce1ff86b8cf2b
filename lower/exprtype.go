package lower

import (
	"errors"

	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/diag"
	"github.com/ca-lang/cac/resolver"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

// inferType computes the CADataType an expression node evaluates to. The
// core does not run a standalone type-checking pass ahead of lowering —
// typeid resolution happens inline, the same single-walk shape
// original_source/src/semantics does for this middle-end (each expression
// is typed exactly once, immediately before (or as) it is emitted).
func (d *Driver) inferType(scope *symtable.Scope, n ast.Node) *types.CADataType {
	switch e := n.(type) {
	case *ast.Literal:
		return d.inferLiteralType(scope, e)
	case *ast.Id:
		return d.inferIDType(scope, e)
	case *ast.Expr:
		return d.inferExprOpType(scope, e)
	case *ast.Range:
		return d.inferRangeType(scope, e)
	case *ast.StructExpr:
		return d.resolveType(scope, "t:"+e.TypeName)
	case *ast.ArrayDef:
		elemNode := firstArrayElem(e)
		elem := d.inferType(scope, elemNode)
		count := e.Count
		if e.Repeat == nil {
			count = uint64(len(e.Elems))
		}
		return types.GetOrBuildArray(d.Types, elem, count)
	case *ast.Box:
		inner := d.inferType(scope, e.Expr)
		return types.GetOrBuildPointer(d.Types, inner, types.AllocHeap)
	case *ast.ArrayItemLeft:
		return d.arrayElemType(scope, e.Array)
	case *ast.ArrayItemRight:
		return d.arrayElemType(scope, e.Array)
	case *ast.DerefLeft:
		return d.derefType(scope, e.Expr)
	case *ast.StructFieldOpLeft:
		return d.fieldType(scope, e.Parent, e.Field)
	case *ast.StructFieldOpRight:
		return d.fieldType(scope, e.Parent, e.Field)
	case *ast.If:
		if len(e.Bodies) > 0 {
			return d.inferType(scope, e.Bodies[0])
		}
		return d.Types.Primitive("void")
	case *ast.LexicalBody:
		if n := len(e.Stmts); n > 0 {
			return d.inferType(scope, e.Stmts[n-1])
		}
		return d.Types.Primitive("void")
	default:
		diag.Fatalf(n, "internal error: cannot infer a type for %T", n)
		return nil
	}
}

func firstArrayElem(e *ast.ArrayDef) ast.Node {
	if e.Repeat != nil {
		return e.Repeat
	}
	return e.Elems[0]
}

func (d *Driver) inferLiteralType(scope *symtable.Scope, lit *ast.Literal) *types.CADataType {
	if lit.Fixed && lit.TypeID != "" {
		return d.resolveType(scope, lit.TypeID)
	}
	if lit.Kind == ast.LitArray {
		elem := d.inferType(scope, lit.Elems[0])
		return types.GetOrBuildArray(d.Types, elem, uint64(len(lit.Elems)))
	}
	if lit.Kind == ast.LitStruct {
		return d.resolveType(scope, "t:"+lit.Text)
	}
	if lit.PostfixType != "" {
		return d.resolveType(scope, "t:"+lit.PostfixType)
	}
	dt, err := types.InferLiteral(d.Types, astLitKind(lit.Kind), lit.Text, lit.I64)
	if err != nil {
		diag.Fatalf(lit, "%v", err)
	}
	return dt
}

func astLitKind(k ast.LitKind) types.LitKindLike {
	switch k {
	case ast.LitI64:
		return types.LitKindSignedInt
	case ast.LitU64:
		return types.LitKindUnsignedInt
	case ast.LitF64:
		return types.LitKindFloat
	case ast.LitBool:
		return types.LitKindBool
	case ast.LitI8:
		return types.LitKindI8
	case ast.LitU8:
		return types.LitKindU8
	case ast.LitCString:
		return types.LitKindCString
	default:
		return types.LitKindInvalid
	}
}

func (d *Driver) inferIDType(scope *symtable.Scope, id *ast.Id) *types.CADataType {
	entry, owner, ok := symtable.GetsymST2(scope, id.Name)
	if !ok {
		diag.Fatalf(id, "undefined identifier %q", id.Name)
	}
	ve, ok := entry.(*symtable.VariableEntry)
	if !ok {
		diag.Fatalf(id, "%q is not a variable", id.Name)
	}
	return d.resolveType(owner, ve.Shielding.Current.DataType)
}

func (d *Driver) inferExprOpType(scope *symtable.Scope, e *ast.Expr) *types.CADataType {
	switch e.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAndAnd, ast.OpOrOr, ast.OpNot:
		return d.Types.Primitive("bool")
	case ast.OpAs:
		return d.resolveType(scope, e.AsType)
	case ast.OpSizeof:
		return d.Types.Primitive("u64")
	case ast.OpTypeof:
		return d.inferType(scope, e.Operands[0])
	case ast.OpAddrOf:
		inner := d.inferType(scope, e.Operands[0])
		return types.GetOrBuildPointer(d.Types, inner, types.AllocStack)
	case ast.OpDeref:
		return d.derefType(scope, e.Operands[0])
	case ast.OpArrayIndex:
		return d.arrayElemType(scope, e.Operands[0])
	case ast.OpStructField:
		return d.fieldType(scope, e.Operands[0], e.FieldName)
	case ast.OpFnCall:
		return d.callReturnType(scope, e)
	case ast.OpStruct:
		return d.resolveType(scope, "t:"+e.CalleeName)
	case ast.OpRange:
		return d.inferType(scope, e.Operands[0])
	default:
		if len(e.Operands) > 0 {
			return d.inferType(scope, e.Operands[0])
		}
		diag.Fatalf(e, "internal error: cannot infer a type for operator %v", e.Op)
		return nil
	}
}

func (d *Driver) derefType(scope *symtable.Scope, ptrExpr ast.Node) *types.CADataType {
	pt := d.inferType(scope, ptrExpr)
	if pt.Token != types.POINTER {
		diag.Fatalf(ptrExpr, "cannot dereference a non-pointer value of type %s", pt.Signature)
	}
	return pt.Pointer.Kernel
}

func (d *Driver) arrayElemType(scope *symtable.Scope, arrExpr ast.Node) *types.CADataType {
	at := d.inferType(scope, arrExpr)
	switch at.Token {
	case types.ARRAY:
		return at.Array.Elem
	case types.SLICE:
		return at.Struct.Fields[0].Type.Pointer.Kernel
	default:
		diag.Fatalf(arrExpr, "cannot index a value of type %s", at.Signature)
		return nil
	}
}

func (d *Driver) fieldType(scope *symtable.Scope, parentExpr ast.Node, field string) *types.CADataType {
	pt := d.inferType(scope, parentExpr)
	if pt.Token == types.POINTER {
		pt = pt.Pointer.Kernel
	}
	if pt.Token != types.STRUCT && pt.Token != types.SLICE {
		diag.Fatalf(parentExpr, "value of type %s has no fields", pt.Signature)
	}
	for _, f := range pt.Struct.Fields {
		if f.Name == field {
			return f.Type
		}
	}
	diag.Fatalf(parentExpr, "type %s has no field %q", pt.Signature, field)
	return nil
}

func (d *Driver) callReturnType(scope *symtable.Scope, call *ast.Expr) *types.CADataType {
	fe := d.resolveCallee(scope, call)
	return d.resolveType(scope, orVoid(fe.RetType))
}

// resolveCallee resolves an OpFnCall's callee to a function-table entry,
// covering free calls ("name(...)"), receiver method calls
// ("recv.method(...)", parsed with an *ast.MethodRecv in Operands[0]), and
// the two explicit qualified forms ("Type::method(...)" as *ast.Domain,
// "<A as T>::method(...)" as *ast.DomainAs).
func (d *Driver) resolveCallee(scope *symtable.Scope, call *ast.Expr) *symtable.FnEntry {
	switch callee := firstCalleeOperand(call).(type) {
	case *ast.Domain:
		return d.resolveDomainCallee(scope, callee)
	case *ast.DomainAs:
		dt := d.resolveType(scope, "t:"+callee.Main)
		dte := d.structEntryFor(scope, dt)
		mi, _, err := resolver.ResolveDomainCall(dte, callee.Trait, callee.FnName)
		if err != nil {
			diag.Fatalf(call, "%v", err)
		}
		return d.fnEntryForMangled(scope, mi.Mangled)
	case *ast.MethodRecv:
		return d.resolveMethodCallee(scope, callee, call.CalleeName)
	default:
		fn, _, err := resolver.ResolveFreeCall(scope, call.CalleeName)
		if err != nil {
			diag.Fatalf(call, "%v", err)
		}
		return fn
	}
}

// firstCalleeOperand returns the callee-describing node carried by an
// OpFnCall Expr, if the parser attached one (a Domain/DomainAs/MethodRecv)
// as Operands[0]; bare free calls identify their callee purely through
// CalleeName and carry only their arguments in Operands.
func firstCalleeOperand(call *ast.Expr) ast.Node {
	if len(call.Operands) == 0 {
		return nil
	}
	switch call.Operands[0].(type) {
	case *ast.Domain, *ast.DomainAs, *ast.MethodRecv:
		return call.Operands[0]
	default:
		return nil
	}
}

func (d *Driver) resolveDomainCallee(scope *symtable.Scope, dom *ast.Domain) *symtable.FnEntry {
	if len(dom.Path) != 2 {
		diag.Fatalf(dom, "malformed domain call %q", dom.String())
	}
	typeName, method := dom.Path[0], dom.Path[1]
	dt := d.resolveType(scope, "t:"+typeName)
	dte := d.structEntryFor(scope, dt)
	mi, _, err := resolver.ResolveMethodCall(dte, method)
	if err != nil {
		d.reportCalleeError(dom, err)
	}
	return d.fnEntryForMangled(scope, mi.Mangled)
}

// resolveMethodCallee resolves a "recv.method(...)" call: infer the
// receiver's type (unwrapping one level of pointer so "&self"-style
// receivers resolve against the pointee's Runables table the same way a
// direct value receiver would), then resolve method against that
// struct's Runables table exactly as a Type-qualified call does.
func (d *Driver) resolveMethodCallee(scope *symtable.Scope, recv *ast.MethodRecv, method string) *symtable.FnEntry {
	rt := d.inferType(scope, recv.Recv)
	if rt.Token == types.POINTER {
		rt = rt.Pointer.Kernel
	}
	dte := d.structEntryFor(scope, rt)
	mi, _, err := resolver.ResolveMethodCall(dte, method)
	if err != nil {
		d.reportCalleeError(recv, err)
	}
	return d.fnEntryForMangled(scope, mi.Mangled)
}

// reportCalleeError turns a callee-resolution error into the driver's fatal
// diagnostic. An *resolver.AmbiguousMethodError gets one diag.Notef per
// candidate trait naming the trait explicitly, followed by a fixed fatal
// headline; any other error is reported as-is.
func (d *Driver) reportCalleeError(n ast.Node, err error) {
	var amb *resolver.AmbiguousMethodError
	if errors.As(err, &amb) {
		for _, trait := range amb.Candidates {
			diag.Notef(n, "trait %q also provides %q", trait, amb.Name)
		}
		diag.Fatalf(n, "multiple applicable items in scope")
	}
	diag.Fatalf(n, "%v", err)
}

func (d *Driver) structEntryFor(scope *symtable.Scope, dt *types.CADataType) *symtable.DataTypeEntry {
	entry, _, ok := symtable.Getsym(scope, dt.FormalName)
	if !ok {
		diag.Fatalf(diag.Unknown, "internal error: type %q has no symbol table entry", dt.FormalName)
	}
	dte, ok := entry.(*symtable.DataTypeEntry)
	if !ok {
		diag.Fatalf(diag.Unknown, "%q is not a struct type", dt.FormalName)
	}
	return dte
}

func (d *Driver) fnEntryForMangled(scope *symtable.Scope, mangled string) *symtable.FnEntry {
	entry, _, ok := symtable.Getsym(scope, mangled)
	if !ok {
		diag.Fatalf(diag.Unknown, "internal error: no prototype registered for %q", mangled)
	}
	return entry.(*symtable.FnEntry)
}

func (d *Driver) inferRangeType(scope *symtable.Scope, r *ast.Range) *types.CADataType {
	var start, end *types.CADataType
	if r.Start != nil {
		start = d.inferType(scope, r.Start)
	}
	if r.End != nil {
		end = d.inferType(scope, r.End)
	}
	kind := rangeKindOf(r)
	return types.RangeType(d.Types, kind, start, end)
}

func rangeKindOf(r *ast.Range) types.RangeKind {
	switch {
	case r.Start == nil && r.End == nil:
		return types.RangeFull
	case r.Start != nil && r.End != nil && r.Inclusive:
		return types.RangeInclusive
	case r.Start != nil && r.End != nil:
		return types.RangeRightExclusive
	case r.Start == nil && r.Inclusive:
		return types.RangeInclusiveTo
	case r.Start == nil:
		return types.RangeRightExclusiveTo
	default:
		return types.RangeFrom
	}
}
