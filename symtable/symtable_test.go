package symtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/symtable"
)

func TestGetsymWalksParentChain(t *testing.T) {
	global := symtable.NewGlobal()
	global.Insert("x", symtable.NewVariableEntry(&symtable.CAVariable{Name: "x", DataType: "t:i32"}))

	child := symtable.PushNew(global)
	e, owner, ok := symtable.Getsym(child, "x")
	assert.True(t, ok)
	assert.NotNil(t, owner)
	ve := e.(*symtable.VariableEntry)
	assert.Equal(t, "t:i32", ve.Shielding.Current.DataType)

	_, _, ok = symtable.Getsym(child, "missing")
	assert.False(t, ok)
}

func TestVariableShieldingRebind(t *testing.T) {
	outer := &symtable.CAVariable{Name: "a", DataType: "t:i32"}
	entry := symtable.NewVariableEntry(outer)
	assert.Equal(t, outer, entry.Shielding.Current)

	// "let a = a + 1;": consult the outer binding while evaluating the RHS.
	entry.Shielding.RotateBack()
	assert.Nil(t, entry.Shielding.Current) // no prior binding exists yet
	entry.Shielding.RotateForward()
	assert.Equal(t, outer, entry.Shielding.Current)

	inner := &symtable.CAVariable{Name: "a", DataType: "t:i32"}
	entry.Shielding.Push(inner)
	assert.Equal(t, inner, entry.Shielding.Current)

	entry.Shielding.RotateBack()
	assert.Equal(t, outer, entry.Shielding.Current)
	entry.Shielding.RotateForward()
	assert.Equal(t, inner, entry.Shielding.Current)

	popped := entry.Shielding.Pop()
	assert.Equal(t, inner, popped)
	assert.Equal(t, outer, entry.Shielding.Current)
	assert.Empty(t, entry.Shielding.Stack)
}

func TestAssocOverlayRedirectsOnlyListedIDs(t *testing.T) {
	global := symtable.NewGlobal()
	implScope := symtable.PushNew(global)
	implScope.Insert("Self", symtable.NewVariableEntry(&symtable.CAVariable{Name: "Self", DataType: "t:{Point;x:i32,y:i32}"}))

	traitScope := symtable.PushNew(global)
	assoc := symtable.NewAssoc(symtable.AssocGeneric, implScope)
	symtable.AssocAddItem(assoc, "Self")
	traitScope.SetAssoc(assoc)

	e, _, ok := symtable.GetsymST2(traitScope, "Self")
	assert.True(t, ok)
	assert.Equal(t, "t:{Point;x:i32,y:i32}", e.(*symtable.VariableEntry).Shielding.Current.DataType)

	// A name not in IDSet is unaffected by the overlay.
	_, _, ok = symtable.GetsymST2(traitScope, "other")
	assert.False(t, ok)
}

func TestRunablesLookupAmbiguity(t *testing.T) {
	r := symtable.NewRunables()
	r.AddTraitMethod("T1", "m", &symtable.MethodImpl{FnName: "m", Mangled: "f:TSF2T15SS_m"}, nil)
	r.AddTraitMethod("T2", "m", &symtable.MethodImpl{FnName: "m", Mangled: "f:TSF2T25SS_m"}, nil)

	m, _, ambiguous := r.Lookup("m")
	assert.Nil(t, m)
	assert.ElementsMatch(t, []string{"T1", "T2"}, ambiguous)

	r.AddStructMethod("g", &symtable.MethodImpl{FnName: "g"})
	m, _, ambiguous = r.Lookup("g")
	assert.NotNil(t, m)
	assert.Nil(t, ambiguous)
}
