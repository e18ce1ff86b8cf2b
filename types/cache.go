package types

import (
	"fmt"

	"github.com/ca-lang/cac/ast"
)

// Cache is one compilation's type table: a signature->CADataType map (every
// distinct structural type is represented exactly once) plus a (scope,
// typeid-text)->CADataType fast-path matching catype_get_by_name's own
// memoization.
type Cache struct {
	bySignature   map[string]*CADataType
	byScopeTypeID map[string]*CADataType
	primNames     map[string]*CADataType
}

func scopeKey(s ast.Scope, typeid string) string {
	if s == nil {
		return "0#" + typeid
	}
	return fmt.Sprintf("%d#%s", s.ScopeID(), typeid)
}

func newPrimitive(tok TokenKind, name string, size int64) *CADataType {
	return &CADataType{
		Token: tok, FormalName: name, ByteSize: size,
		Signature: "t:" + name, Status: StatusCompact,
	}
}

// NewCache builds a Cache preloaded with the fixed set of primitive types:
// void, the signed/unsigned integer widths, the two float widths, bool, and
// cstring.
func NewCache() *Cache {
	c := &Cache{
		bySignature:   make(map[string]*CADataType, 256),
		byScopeTypeID: make(map[string]*CADataType, 1024),
		primNames:     make(map[string]*CADataType, 16),
	}
	prims := []struct {
		tok  TokenKind
		name string
		size int64
	}{
		{VOID, "void", 0},
		{I8, "i8", 1}, {U8, "u8", 1}, {BOOL, "bool", 1},
		{I16, "i16", 2}, {U16, "u16", 2},
		{I32, "i32", 4}, {U32, "u32", 4}, {F32, "f32", 4},
		{I64, "i64", 8}, {U64, "u64", 8}, {F64, "f64", 8},
		{CSTRING, "cstring", 8},
	}
	for _, p := range prims {
		dt := newPrimitive(p.tok, p.name, p.size)
		c.primNames[p.name] = dt
		c.bySignature[dt.Signature] = dt
	}
	return c
}

// Primitive returns the cached primitive type named name, or nil.
func (c *Cache) Primitive(name string) *CADataType { return c.primNames[name] }

// RegisterSignature installs dt under its own Signature, returning whatever
// is now canonically cached for that signature: dt itself if this is the
// first registration, or the pre-existing type if another unwind already
// produced the identical structural signature (one CADataType per
// distinct signature).
func (c *Cache) RegisterSignature(dt *CADataType) *CADataType {
	if existing, ok := c.bySignature[dt.Signature]; ok {
		return existing
	}
	c.bySignature[dt.Signature] = dt
	return dt
}

// GetByName is catype_get_by_name: resolve typeid (a "t:..." typeid string,
// possibly naming an alias, possibly already a full structural signature)
// in scope, to the shared CADataType the rest of the compiler should use.
// Results are cached twice: by the exact (scope, typeid-text) pair that was
// asked for, and by the resulting canonical signature, so repeated lookups
// of the same alias from the same scope and lookups of the same signature
// from different scopes both short-circuit.
func (c *Cache) GetByName(scope ast.Scope, resolver Resolver, typeid string) (*CADataType, error) {
	key := scopeKey(scope, typeid)
	if dt, ok := c.byScopeTypeID[key]; ok {
		return dt, nil
	}
	if dt, ok := c.bySignature[typeid]; ok {
		c.byScopeTypeID[key] = dt
		return dt, nil
	}
	env := &unwindEnv{cache: c, resolver: resolver, prenamemap: map[string]*CADataType{}, rcheckset: map[string]bool{}}
	dt, err := env.unwind(scope, typeid)
	if err != nil {
		return nil, err
	}
	if err := c.Formalize(dt); err != nil {
		return nil, err
	}
	canon := c.RegisterSignature(dt)
	c.byScopeTypeID[key] = canon
	return canon, nil
}
