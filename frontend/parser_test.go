package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/ast"
	"github.com/ca-lang/cac/frontend"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `
fn add(a: i64, b: i64) -> i64 {
	return a + b;
}
`
	prog, err := frontend.Parse("add.ca", []byte(src))
	assert.NoError(t, err)
	assert.Len(t, prog.Decls, 1)

	def, ok := prog.Decls[0].(*ast.FnDef)
	assert.True(t, ok)
	assert.Equal(t, "add", def.Decl.Name)
	assert.Equal(t, "i64", def.Decl.Ret)
	assert.Len(t, def.Decl.Args, 2)
	assert.Equal(t, "a", def.Decl.Args[0].Name)
	assert.Equal(t, "i64", def.Decl.Args[0].TypeID)

	assert.Len(t, def.Stmts, 1)
	ret, ok := def.Stmts[0].(*ast.Ret)
	assert.True(t, ok)
	expr, ok := ret.Expr.(*ast.Expr)
	assert.True(t, ok)
	assert.Equal(t, ast.OpAdd, expr.Op)
}

func TestParseLetAndAssign(t *testing.T) {
	src := `
fn main() {
	let mut x: i32 = 1;
	x += 2;
	print x;
}
`
	prog, err := frontend.Parse("main.ca", []byte(src))
	assert.NoError(t, err)
	def := prog.Decls[0].(*ast.FnDef)
	assert.Len(t, def.Stmts, 3)

	let, ok := def.Stmts[0].(*ast.LetBind)
	assert.True(t, ok)
	assert.True(t, let.Mutable)
	assert.Equal(t, "x", let.Pattern.Name)
	assert.Equal(t, "i32", let.TypeID)

	assign, ok := def.Stmts[1].(*ast.Assign)
	assert.True(t, ok)
	assert.Equal(t, ast.AssignAdd, assign.Op)
	id, ok := assign.LHS.(*ast.Id)
	assert.True(t, ok)
	assert.Equal(t, "x", id.Name)

	_, ok = def.Stmts[2].(*ast.DbgPrint)
	assert.True(t, ok)
}

func TestParseIfWhileForCallPrecedence(t *testing.T) {
	src := `
fn run(n: i64) -> bool {
	if n == 0 {
		return true;
	} else if n < 0 {
		return false;
	} else {
		while n > 0 {
			n -= 1;
		}
	}
	loop {
		break;
	}
	for i in n {
		continue;
	}
	return 1 + 2 * 3 == 7 && !false;
}
`
	prog, err := frontend.Parse("run.ca", []byte(src))
	assert.NoError(t, err)
	def := prog.Decls[0].(*ast.FnDef)
	assert.Equal(t, "bool", def.Decl.Ret)

	ifStmt, ok := def.Stmts[0].(*ast.If)
	assert.True(t, ok)
	assert.Len(t, ifStmt.Conds, 2)
	assert.NotNil(t, ifStmt.Else)

	_, ok = def.Stmts[1].(*ast.Loop)
	assert.True(t, ok)
	_, ok = def.Stmts[2].(*ast.For)
	assert.True(t, ok)

	last, ok := def.Stmts[3].(*ast.Ret)
	assert.True(t, ok)
	top, ok := last.Expr.(*ast.Expr)
	assert.True(t, ok)
	assert.Equal(t, ast.OpAndAnd, top.Op)
}

func TestParseFunctionCall(t *testing.T) {
	src := `
fn main() {
	let r: i64 = add(1, 2);
}
`
	prog, err := frontend.Parse("call.ca", []byte(src))
	assert.NoError(t, err)
	def := prog.Decls[0].(*ast.FnDef)
	let := def.Stmts[0].(*ast.LetBind)
	call, ok := let.Expr.(*ast.Expr)
	assert.True(t, ok)
	assert.Equal(t, ast.OpFnCall, call.Op)
	assert.Equal(t, "add", call.CalleeName)
	assert.Len(t, call.Operands, 2)
}

func TestParseMethodCall(t *testing.T) {
	src := `
fn main() {
	let r: i64 = counter.add(1, 2);
}
`
	prog, err := frontend.Parse("method.ca", []byte(src))
	assert.NoError(t, err)
	def := prog.Decls[0].(*ast.FnDef)
	let := def.Stmts[0].(*ast.LetBind)
	call, ok := let.Expr.(*ast.Expr)
	assert.True(t, ok)
	assert.Equal(t, ast.OpFnCall, call.Op)
	assert.Equal(t, "add", call.CalleeName)
	assert.Len(t, call.Operands, 3)

	recv, ok := call.Operands[0].(*ast.MethodRecv)
	assert.True(t, ok)
	id, ok := recv.Recv.(*ast.Id)
	assert.True(t, ok)
	assert.Equal(t, "counter", id.Name)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := frontend.Parse("bad.ca", []byte("fn main( { }"))
	assert.Error(t, err)
}
