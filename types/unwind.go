package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ca-lang/cac/ast"
)

// unwindEnv carries the per-call state the recursive unwinder threads
// through: prenamemap holds a placeholder for every struct currently being
// built, so a field that points back to its own struct (directly or through
// another struct) resolves to the in-progress placeholder instead of
// recursing forever; rcheckset detects a *pure* alias cycle ("type A = B;
// type B = A;"), which prenamemap's pointer-breaks-the-cycle trick cannot
// rescue because no pointer indirection is involved.
type unwindEnv struct {
	cache      *Cache
	resolver   Resolver
	prenamemap map[string]*CADataType
	rcheckset  map[string]bool
}

func (e *unwindEnv) unwind(scope ast.Scope, typeid string) (*CADataType, error) {
	core := strings.TrimPrefix(typeid, "t:")
	return e.unwindCore(scope, core)
}

func (e *unwindEnv) unwindCore(scope ast.Scope, core string) (*CADataType, error) {
	if core == "" {
		return nil, fmt.Errorf("types: empty type signature")
	}
	switch core[0] {
	case '*':
		return e.unwindPointer(scope, core[1:])
	case '[':
		return e.unwindArray(scope, core)
	case '(':
		return e.unwindGeneralTuple(scope, core)
	case '{':
		return e.unwindNamedAggregate(scope, core)
	case '<':
		return e.unwindSlice(scope, core)
	case '#':
		return e.unwindRange(scope, core)
	default:
		if strings.HasPrefix(core, "+:") {
			return e.unwindTypeofHole(scope, core[2:])
		}
		return e.unwindName(scope, core)
	}
}

func (e *unwindEnv) unwindPointer(scope ast.Scope, innerCore string) (*CADataType, error) {
	inner, err := e.unwindCore(scope, innerCore)
	if err != nil {
		return nil, err
	}
	dt := &CADataType{
		Token:     POINTER,
		ByteSize:  8,
		Signature: "t:*" + inner.Signature[len("t:"):],
		Status:    StatusOrig,
		Pointer:   &PointerInfo{Kernel: inner, Dimension: 1, Alloc: AllocStack},
	}
	return e.cache.RegisterSignature(dt), nil
}

// splitTopLevel splits s on sep at bracket-depth 0, respecting
// ([{<>}])-style nesting so a nested array/struct/slice signature inside a
// field list doesn't get sliced in half.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// unwindArray parses "[innerSig;n]".
func (e *unwindEnv) unwindArray(scope ast.Scope, core string) (*CADataType, error) {
	if core[len(core)-1] != ']' {
		return nil, fmt.Errorf("types: malformed array signature %q", core)
	}
	body := core[1 : len(core)-1]
	parts := splitTopLevel(body, ';')
	if len(parts) != 2 {
		return nil, fmt.Errorf("types: malformed array signature %q", core)
	}
	n, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("types: bad array length in %q: %w", core, err)
	}
	elem, err := e.unwindCore(scope, parts[0])
	if err != nil {
		return nil, err
	}
	size := SizeUnbounded
	if elem.ByteSize >= 0 {
		size = elem.ByteSize * int64(n)
	}
	dt := &CADataType{
		Token:     ARRAY,
		ByteSize:  size,
		Signature: "t:[" + elem.Signature[len("t:"):] + ";" + parts[1] + "]",
		Status:    StatusOrig,
		Array:     &ArrayInfo{Elem: elem, Dimension: 1, Lengths: []uint64{n}},
	}
	return e.cache.RegisterSignature(dt), nil
}

// unwindGeneralTuple parses "(;m1,m2,...)" — an anonymous tuple.
func (e *unwindEnv) unwindGeneralTuple(scope ast.Scope, core string) (*CADataType, error) {
	if core[len(core)-1] != ')' {
		return nil, fmt.Errorf("types: malformed tuple signature %q", core)
	}
	body := strings.TrimPrefix(core[1:len(core)-1], ";")
	var memberSigs []string
	var fields []StructField
	var total int64
	unbounded := false
	if body != "" {
		for _, m := range splitTopLevel(body, ',') {
			mt, err := e.unwindCore(scope, m)
			if err != nil {
				return nil, err
			}
			fields = append(fields, StructField{Type: mt})
			memberSigs = append(memberSigs, mt.Signature[len("t:"):])
			if mt.ByteSize < 0 || unbounded {
				unbounded = true
			} else {
				total += mt.ByteSize
			}
		}
	}
	size := total
	if unbounded {
		size = SizeUnbounded
	}
	dt := &CADataType{
		Token:     STRUCT,
		ByteSize:  size,
		Signature: "t:(;" + strings.Join(memberSigs, ",") + ")",
		Status:    StatusOrig,
		Struct:    &StructInfo{Kind: ast.GeneralTuple, Fields: fields},
	}
	return e.cache.RegisterSignature(dt), nil
}

// unwindNamedAggregate parses an already-structural "{Name;f1:t1,f2:t2,...}"
// form, as produced when re-stringifying a struct type that was already
// unwound (e.g. nested inside another signature).
func (e *unwindEnv) unwindNamedAggregate(scope ast.Scope, core string) (*CADataType, error) {
	if core[len(core)-1] != '}' {
		return nil, fmt.Errorf("types: malformed struct signature %q", core)
	}
	body := core[1 : len(core)-1]
	top := splitTopLevel(body, ';')
	name := top[0]
	var memberText string
	if len(top) > 1 {
		memberText = strings.Join(top[1:], ";")
	}
	return e.buildStruct(scope, name, ast.NamedStruct, splitTopLevel(memberText, ','), func(part string) (string, string) {
		kv := splitTopLevel(part, ':')
		if len(kv) != 2 {
			return "", part
		}
		return kv[0], kv[1]
	})
}

func (e *unwindEnv) unwindSlice(scope ast.Scope, core string) (*CADataType, error) {
	if core[len(core)-1] != '>' {
		return nil, fmt.Errorf("types: malformed slice signature %q", core)
	}
	body := strings.TrimPrefix(strings.TrimSuffix(core[1:len(core)-1], ">"), "slice;")
	elem, err := e.unwindCore(scope, body)
	if err != nil {
		return nil, err
	}
	return SliceOf(e.cache, elem), nil
}

func (e *unwindEnv) unwindRange(scope ast.Scope, core string) (*CADataType, error) {
	body := strings.Trim(core, "#")
	parts := splitTopLevel(body, ';')
	if len(parts) < 1 {
		return nil, fmt.Errorf("types: malformed range signature %q", core)
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("types: malformed range kind in %q: %w", core, err)
	}
	var start, end *CADataType
	if len(parts) > 1 && parts[1] != "" {
		start, err = e.unwindCore(scope, parts[1])
		if err != nil {
			return nil, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		end, err = e.unwindCore(scope, parts[2])
		if err != nil {
			return nil, err
		}
	}
	return RangeType(e.cache, RangeKind(kind), start, end), nil
}

func (e *unwindEnv) unwindTypeofHole(scope ast.Scope, exprKey string) (*CADataType, error) {
	typeid, ok := e.resolver.InferExprType(scope, exprKey)
	if !ok {
		return nil, fmt.Errorf("types: typeof() could not infer a type for expression %q", exprKey)
	}
	return e.unwind(scope, typeid)
}

func (e *unwindEnv) unwindName(scope ast.Scope, name string) (*CADataType, error) {
	if prim := e.cache.Primitive(name); prim != nil {
		return prim, nil
	}
	if placeholder, ok := e.prenamemap[name]; ok {
		return placeholder, nil
	}
	kind, aliasTarget, structKind, fields, ownerScope, found := e.resolver.LookupType(scope, name)
	if !found {
		return nil, fmt.Errorf("types: undefined type %q", name)
	}
	switch kind {
	case NamePrimitive:
		if prim := e.cache.Primitive(name); prim != nil {
			return prim, nil
		}
		return nil, fmt.Errorf("types: %q reported as primitive but not registered", name)
	case NameAlias:
		if e.rcheckset[name] {
			return nil, fmt.Errorf("types: circular type alias involving %q", name)
		}
		e.rcheckset[name] = true
		target, err := e.unwind(ownerScope, aliasTarget)
		delete(e.rcheckset, name)
		return target, err
	case NameStruct:
		return e.buildStructFromFields(scope, name, structKind, ownerScope, fields)
	default:
		return nil, fmt.Errorf("types: %q resolves to an unknown name kind", name)
	}
}

// buildStructFromFields constructs (and registers in prenamemap before
// recursing into member types) the CADataType for a struct/tuple
// declaration already resolved to its FieldRef list by a Resolver.
func (e *unwindEnv) buildStructFromFields(scope ast.Scope, name string, kind ast.StructKind, ownerScope ast.Scope, fields []FieldRef) (*CADataType, error) {
	// The provisional signature is nominal (name only, no field list): a
	// pointer field that refers back to this same struct (e.g. a linked-list
	// "next" field) gets built while placeholder.Struct is still nil, so it
	// must see a stable signature before the real structural one exists.
	// The final signature below supersedes it once fields are known.
	placeholder := &CADataType{Token: STRUCT, FormalName: name, ByteSize: SizeComputing, Status: StatusOrig, Signature: "t:{" + name}
	e.prenamemap[name] = placeholder
	defer delete(e.prenamemap, name)

	var structFields []StructField
	var memberSigParts []string
	for _, f := range fields {
		mt, err := e.unwind(ownerScope, f.TypeID)
		if err != nil {
			return nil, err
		}
		structFields = append(structFields, StructField{Name: f.Name, Type: mt})
		if f.Name != "" {
			memberSigParts = append(memberSigParts, f.Name+":"+mt.Signature[len("t:"):])
		} else {
			memberSigParts = append(memberSigParts, mt.Signature[len("t:"):])
		}
	}
	placeholder.Struct = &StructInfo{Kind: kind, Name: name, Fields: structFields}
	placeholder.Signature = "t:{" + name + ";" + strings.Join(memberSigParts, ",") + "}"
	return e.cache.RegisterSignature(placeholder), nil
}

// buildStruct is the shared helper behind unwindNamedAggregate for an
// already-structural "{Name;f1:t1,...}" signature text (as opposed to a
// Resolver-provided FieldRef list).
func (e *unwindEnv) buildStruct(scope ast.Scope, name string, kind ast.StructKind, parts []string, splitKV func(string) (string, string)) (*CADataType, error) {
	var fields []FieldRef
	for _, p := range parts {
		if p == "" {
			continue
		}
		k, v := splitKV(p)
		fields = append(fields, FieldRef{Name: k, TypeID: "t:" + v})
	}
	return e.buildStructFromFields(scope, name, kind, scope, fields)
}
