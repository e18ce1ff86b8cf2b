package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/types"
)

// fakeScope is a minimal ast.Scope for tests that don't need symtable.
type fakeScope struct{ id int64 }

func (s fakeScope) ScopeID() int64 { return s.id }

// fakeResolver implements types.Resolver over small hand-built tables, so
// these tests exercise the unwinder/formalizer without depending on
// package symtable.
type fakeResolver struct {
	aliases map[string]string
	structs map[string]struct {
		kind   ast.StructKind
		fields []types.FieldRef
		scope  ast.Scope
	}
}

func (r *fakeResolver) LookupType(scope ast.Scope, name string) (types.NameKind, string, ast.StructKind, []types.FieldRef, ast.Scope, bool) {
	if alias, ok := r.aliases[name]; ok {
		return types.NameAlias, alias, 0, nil, scope, true
	}
	if s, ok := r.structs[name]; ok {
		return types.NameStruct, "", s.kind, s.fields, s.scope, true
	}
	return types.NameUnknown, "", 0, nil, nil, false
}

func (r *fakeResolver) InferExprType(scope ast.Scope, exprKey string) (string, bool) {
	return "", false
}

func TestGetByNamePrimitive(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{}
	s := fakeScope{1}
	dt, err := c.GetByName(s, r, "t:i32")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), dt.ByteSize)
	assert.Equal(t, "t:i32", dt.Signature)
}

func TestGetByNamePointerAndArray(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{}
	s := fakeScope{1}

	ptr, err := c.GetByName(s, r, "t:*i64")
	assert.NoError(t, err)
	assert.Equal(t, int64(8), ptr.ByteSize)

	arr, err := c.GetByName(s, r, "t:[i32;4]")
	assert.NoError(t, err)
	assert.Equal(t, int64(16), arr.ByteSize)
}

func TestGetByNameAlias(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{aliases: map[string]string{"MyInt": "t:i64"}}
	s := fakeScope{1}
	dt, err := c.GetByName(s, r, "t:MyInt")
	assert.NoError(t, err)
	assert.Equal(t, "t:i64", dt.Signature)
}

func TestGetByNameAliasCycleErrors(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{aliases: map[string]string{"A": "t:B", "B": "t:A"}}
	s := fakeScope{1}
	_, err := c.GetByName(s, r, "t:A")
	assert.Error(t, err)
}

func TestStructLayoutAndSelfReferentialPointer(t *testing.T) {
	c := types.NewCache()
	s := fakeScope{1}
	r := &fakeResolver{
		structs: map[string]struct {
			kind   ast.StructKind
			fields []types.FieldRef
			scope  ast.Scope
		}{
			"Point": {
				kind: ast.NamedStruct,
				fields: []types.FieldRef{
					{Name: "x", TypeID: "t:i32"},
					{Name: "y", TypeID: "t:i32"},
				},
				scope: s,
			},
			"Node": {
				kind: ast.NamedStruct,
				fields: []types.FieldRef{
					{Name: "val", TypeID: "t:i64"},
					{Name: "next", TypeID: "t:*Node"},
				},
				scope: s,
			},
		},
	}

	point, err := c.GetByName(s, r, "t:Point")
	assert.NoError(t, err)
	assert.Equal(t, int64(8), point.ByteSize)
	assert.Equal(t, int64(0), point.Struct.Fields[0].Offset)
	assert.Equal(t, int64(4), point.Struct.Fields[1].Offset)

	node, err := c.GetByName(s, r, "t:Node")
	assert.NoError(t, err)
	assert.Equal(t, int64(16), node.ByteSize) // 8 (val) + 8 (pointer)
	assert.Same(t, node, node.Struct.Fields[1].Type.Pointer.Kernel)
}

func TestIdenticalAndCanBind(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{}
	s := fakeScope{1}
	i32a, _ := c.GetByName(s, r, "t:i32")
	i32b, _ := c.GetByName(fakeScope{2}, r, "t:i32")
	assert.True(t, types.Identical(i32a, i32b))
	assert.Same(t, i32a, i32b) // shared cache: same signature, same pointer

	i64, _ := c.GetByName(s, r, "t:i64")
	assert.True(t, types.CanBind(i32a, i64))
	assert.False(t, types.CanBind(i64, i32a))
}

func TestCastRule(t *testing.T) {
	c := types.NewCache()
	r := &fakeResolver{}
	s := fakeScope{1}
	i32, _ := c.GetByName(s, r, "t:i32")
	f64, _ := c.GetByName(s, r, "t:f64")

	op, err := types.CastRule(i32, f64)
	assert.NoError(t, err)
	assert.Equal(t, types.CastIntToFloat, op)

	op, err = types.CastRule(f64, i32)
	assert.NoError(t, err)
	assert.Equal(t, types.CastFloatToInt, op)
}

func TestSliceOfAndRangeType(t *testing.T) {
	c := types.NewCache()
	i32 := c.Primitive("i32")
	sl := types.SliceOf(c, i32)
	assert.Equal(t, int64(24), sl.ByteSize)
	assert.Len(t, sl.Struct.Fields, 3)

	rng := types.RangeType(c, types.RangeInclusive, c.Primitive("i64"), c.Primitive("i64"))
	assert.True(t, rng.Range.Inclusive)
}
