package graphviz

import (
	"strings"
	"testing"

	"github.com/ca-lang/cac/ast"
)

func TestDumpASTEmitsEveryNode(t *testing.T) {
	lhs := &ast.Id{Name: "a", Kind: ast.IDVariable}
	rhs := &ast.Literal{Kind: ast.LitI64, Text: "1", I64: 1}
	add := ast.NewExpr(ast.Pos{}, ast.OpAdd, lhs, rhs)
	ret := &ast.Ret{Expr: add}
	prog := &ast.Program{Decls: []ast.Node{ret}}

	var sb strings.Builder
	if err := DumpAST(&sb, prog); err != nil {
		t.Fatalf("DumpAST: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "digraph {\n") {
		t.Fatalf("missing digraph header, got %q", out)
	}
	if !strings.Contains(out, "\"program\" -> \"Program-1\"") {
		t.Errorf("missing program -> root edge, got:\n%s", out)
	}
	for _, want := range []string{"Ret-1", "Expr-1", "Id-1", "Literal-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected node name %q in output:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("missing closing brace, got %q", out)
	}
}

func TestDumpASTDistinguishesRepeatedTypes(t *testing.T) {
	a := &ast.Id{Name: "a", Kind: ast.IDVariable}
	b := &ast.Id{Name: "b", Kind: ast.IDVariable}
	expr := ast.NewExpr(ast.Pos{}, ast.OpAdd, a, b)
	prog := &ast.Program{Decls: []ast.Node{&ast.Ret{Expr: expr}}}

	var sb strings.Builder
	if err := DumpAST(&sb, prog); err != nil {
		t.Fatalf("DumpAST: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "Id-1") || !strings.Contains(out, "Id-2") {
		t.Errorf("expected distinct sequence numbers for sibling Id nodes, got:\n%s", out)
	}
	if !strings.Contains(out, "\"Expr-1\" -> \"Id-1\"") {
		t.Errorf("expected edge from Expr-1 to Id-1, got:\n%s", out)
	}
	if !strings.Contains(out, "\"Expr-1\" -> \"Id-2\"") {
		t.Errorf("expected edge from Expr-1 to Id-2, got:\n%s", out)
	}
}

func TestChildrenOfNilNode(t *testing.T) {
	var n *ast.Id
	if got := childrenOf(n); got != nil {
		t.Errorf("childrenOf(nil) = %v, want nil", got)
	}
}

func TestChildrenOfPattern(t *testing.T) {
	inner := ast.Pattern{Kind: ast.PatVar, Name: "x"}
	let := &ast.LetBind{
		Pattern: ast.Pattern{Kind: ast.PatArray, Items: []ast.Pattern{inner}},
		Expr:    &ast.Literal{Kind: ast.LitI64, Text: "0"},
	}
	kids := childrenOf(let)
	if len(kids) != 1 {
		t.Fatalf("childrenOf(LetBind) = %d children, want 1 (only Expr; Pattern has no nested Node)", len(kids))
	}
	if _, ok := kids[0].(*ast.Literal); !ok {
		t.Errorf("expected the Literal child, got %T", kids[0])
	}
}
