package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/resolver"
	"github.com/ca-lang/cac/symtable"
	"github.com/ca-lang/cac/types"
)

func TestMangleRoundTrip(t *testing.T) {
	label := resolver.MangleMethod("speak", "Dog", "Animal")
	fn, class, trait, isMethod, ok := resolver.Demangle(label)
	assert.True(t, ok)
	assert.True(t, isMethod)
	assert.Equal(t, "speak", fn)
	assert.Equal(t, "Dog", class)
	assert.Equal(t, "Animal", trait)

	plainLabel := resolver.MangleMethod("area", "Circle", "")
	fn, class, trait, isMethod, ok = resolver.Demangle(plainLabel)
	assert.True(t, ok)
	assert.True(t, isMethod)
	assert.Equal(t, "area", fn)
	assert.Equal(t, "Circle", class)
	assert.Equal(t, "", trait)

	fnLabel := resolver.MangleFunction("main")
	fn, _, _, isMethod, ok = resolver.Demangle(fnLabel)
	assert.True(t, ok)
	assert.False(t, isMethod)
	assert.Equal(t, "main", fn)
}

func TestResolveFreeCall(t *testing.T) {
	global := symtable.NewGlobal()
	global.Insert("add", &symtable.FnEntry{
		ArgList:   &symtable.ArgList{Names: []string{"a", "b"}, Types: []string{"t:i32", "t:i32"}},
		RetType:   "t:i32",
		MangledID: "f:add",
	})
	fn, label, err := resolver.ResolveFreeCall(global, "add")
	assert.NoError(t, err)
	assert.Equal(t, "f:add", label)
	assert.Equal(t, "t:i32", fn.RetType)

	_, _, err = resolver.ResolveFreeCall(global, "missing")
	assert.Error(t, err)
}

func TestResolveMethodCallAmbiguous(t *testing.T) {
	r := symtable.NewRunables()
	r.AddTraitMethod("Animal", "speak", &symtable.MethodImpl{FnName: "speak", Mangled: "f:TSF6Animal3Dog_speak"}, nil)
	r.AddTraitMethod("Loud", "speak", &symtable.MethodImpl{FnName: "speak", Mangled: "f:TSF4Loud3Dog_speak"}, nil)
	dte := &symtable.DataTypeEntry{ID: "t:Dog", Runables: r}

	_, _, err := resolver.ResolveMethodCall(dte, "speak")
	assert.Error(t, err)

	m, _, err := resolver.ResolveDomainCall(dte, "Animal", "speak")
	assert.NoError(t, err)
	assert.Equal(t, "f:TSF6Animal3Dog_speak", m.Mangled)
}

func TestCheckRedeclarationAgrees(t *testing.T) {
	a := &symtable.FnEntry{ArgList: &symtable.ArgList{Types: []string{"t:i32"}}, RetType: "t:i32"}
	b := &symtable.FnEntry{ArgList: &symtable.ArgList{Types: []string{"t:i32"}}, RetType: "t:i32"}
	assert.NoError(t, resolver.CheckRedeclarationAgrees(a, b))

	c := &symtable.FnEntry{ArgList: &symtable.ArgList{Types: []string{"t:i64"}}, RetType: "t:i32"}
	assert.Error(t, resolver.CheckRedeclarationAgrees(a, c))
}

func TestCheckTraitImplComplete(t *testing.T) {
	trait := &symtable.TraitDefEntry{TraitID: "Animal", Info: symtable.TraitNodeInfo{IDsNoDef: []string{"speak", "name"}}}
	impl := &symtable.TraitImplEntry{Overridden: map[string]bool{"speak": true}}
	missing := resolver.CheckTraitImplComplete(trait, impl)
	assert.Equal(t, []string{"name"}, missing)
}

func TestTypeAdapterLookupType(t *testing.T) {
	global := symtable.NewGlobal()
	global.Insert("MyInt", &symtable.AliasEntry{Target: "t:i64"})
	global.Insert("Point", &symtable.DataTypeEntry{
		ID:      "t:Point",
		Members: &symtable.ArgList{Names: []string{"x", "y"}, Types: []string{"t:i32", "t:i32"}},
	})

	var adapter resolver.TypeAdapter
	kind, target, _, _, _, ok := adapter.LookupType(global, "MyInt")
	assert.True(t, ok)
	assert.Equal(t, types.NameAlias, kind)
	assert.Equal(t, "t:i64", target)

	kind, _, _, fields, _, ok := adapter.LookupType(global, "Point")
	assert.True(t, ok)
	assert.Equal(t, types.NameStruct, kind)
	assert.Len(t, fields, 2)
}
