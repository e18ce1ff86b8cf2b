package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/ir"
)

func TestBuildSimpleAddFunction(t *testing.T) {
	m := ir.NewModule("test")
	ft := &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.I32, ir.I32}}
	fn := m.NewFunction("add", ft, []ir.Param{{Name: "a", T: ir.I32}, {Name: "b", T: ir.I32}}, ir.External, false)
	entry := fn.AppendBlock(m, "entry")
	b := ir.NewBuilder(m, fn, entry)

	sum := b.Arith(ir.Add, ir.Reg{Name: "a", T: ir.I32}, ir.Reg{Name: "b", T: ir.I32})
	b.Ret(sum)

	assert.NoError(t, m.Verify())
	assert.Contains(t, m.String(), "define i32 @add(i32 %a, i32 %b)")
	assert.Contains(t, m.String(), "ret i32 %t0")
}

func TestVerifyFailsOnMissingTerminator(t *testing.T) {
	m := ir.NewModule("test")
	ft := &ir.FuncType{Ret: ir.Void}
	fn := m.NewFunction("f", ft, nil, ir.External, false)
	fn.AppendBlock(m, "entry")
	assert.Error(t, m.Verify())
}

func TestGlobalStringConstDedups(t *testing.T) {
	m := ir.NewModule("test")
	g1 := m.GlobalStringConst("hello\n")
	g2 := m.GlobalStringConst("hello\n")
	assert.Equal(t, g1.Name, g2.Name)
	assert.Len(t, m.Globals, 1)
}

func TestDeclareExternDoesNotRequireBlocks(t *testing.T) {
	m := ir.NewModule("test")
	ft := &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.PointerType{Elem: ir.I8}}, Vararg: true}
	m.NewFunction("printf", ft, nil, ir.External, true)
	assert.NoError(t, m.Verify())
	assert.Contains(t, m.String(), "declare i32 @printf(i8*, ...)")
}

func TestEntryBlockVarAllocatesInEntryRegardlessOfCurrentBlock(t *testing.T) {
	m := ir.NewModule("test")
	ft := &ir.FuncType{Ret: ir.Void}
	fn := m.NewFunction("f", ft, nil, ir.External, false)
	entry := fn.AppendBlock(m, "entry")
	loop := fn.AppendBlock(m, "loop")
	b := ir.NewBuilder(m, fn, loop)

	b.GenEntryBlockVar(ir.I32, "x")
	assert.Len(t, entry.Insns, 1)
	assert.Contains(t, entry.Insns[0], "alloca i32")
}
