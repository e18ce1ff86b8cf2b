package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ca-lang/cac/ast"
)

// ParseError reports a frontend syntax error with source coordinates,
// "line: L, col: C: <message>" user-visible format.
type ParseError struct {
	Pos     ast.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line: %d, col: %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parse turns src into an ast.Program. filename is used only for
// diagnostic source coordinates.
func Parse(filename string, src []byte) (prog *ast.Program, err error) {
	p := &parser{lex: newLexer(filename, src)}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			err = pe
		}
	}()
	p.advance()
	decls := []ast.Node{}
	for p.tok.kind != tokEOF {
		decls = append(decls, p.parseFnDef())
	}
	return &ast.Program{Decls: decls}, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) fail(format string, args ...interface{}) {
	panic(&ParseError{Pos: p.tok.pos, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokIdent && p.tok.text == kw
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expectPunct(s string) {
	if !p.isPunct(s) {
		p.fail("expected %q, found %q", s, p.tok.text)
	}
	p.advance()
}

func (p *parser) expectKeyword(kw string) {
	if !p.isKeyword(kw) {
		p.fail("expected %q, found %q", kw, p.tok.text)
	}
	p.advance()
}

func (p *parser) expectIdent() string {
	if p.tok.kind != tokIdent {
		p.fail("expected an identifier, found %q", p.tok.text)
	}
	s := p.tok.text
	p.advance()
	return s
}

// ---- top level ----

// parseFnDef parses "fn name(arg: Type, ...) [-> Type] { stmt* }". Structs,
// traits, impls, generics, and externs are not accepted here: the CLI's
// only front-to-back path is plain function definitions over primitive
// types, sufficient to exercise the lowering driver end to end (see the
// package doc comment).
func (p *parser) parseFnDef() *ast.FnDef {
	pos := p.tok.pos
	p.expectKeyword("fn")
	name := p.expectIdent()
	p.expectPunct("(")
	var args []ast.FormalArg
	for !p.isPunct(")") {
		if len(args) > 0 {
			p.expectPunct(",")
		}
		argName := p.expectIdent()
		p.expectPunct(":")
		argType := p.parseTypeID()
		args = append(args, ast.FormalArg{Name: argName, TypeID: argType})
	}
	p.expectPunct(")")
	ret := ""
	if p.isPunct("->") {
		p.advance()
		ret = p.parseTypeID()
	}
	decl := &ast.FnDecl{
		Base: ast.Base{BeginPos: pos},
		Name: name,
		Ret:  ret,
		Args: args,
	}
	body := p.parseBlock()
	return &ast.FnDef{Base: ast.Base{BeginPos: pos}, Decl: decl, Stmts: body.(*ast.LexicalBody).Stmts}
}

// parseTypeID reads a bare type name. Primitive names (i8/i16/.../bool/
// cstring/void) resolve directly; any other identifier is treated as a
// named struct/type ("t:Name"), matching the typeid scheme
// and package types' Cache.GetByName expect.
func (p *parser) parseTypeID() string {
	name := p.expectIdent()
	if isPrimitiveName(name) {
		return name
	}
	for p.isPunct(".") { // allow dotted module-qualified names to pass through whole
		p.advance()
		name += "." + p.expectIdent()
	}
	return "t:" + name
}

func isPrimitiveName(s string) bool {
	switch s {
	case "void", "bool", "i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "f32", "f64", "cstring":
		return true
	}
	return false
}

// ---- statements ----

func (p *parser) parseBlock() ast.Node {
	pos := p.tok.pos
	p.expectPunct("{")
	var stmts []ast.Node
	for !p.isPunct("}") {
		stmts = append(stmts, p.parseStmt())
	}
	p.expectPunct("}")
	return &ast.LexicalBody{Base: ast.Base{BeginPos: pos}, Stmts: stmts}
}

func (p *parser) parseStmt() ast.Node {
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isKeyword("let"):
		return p.parseLet()
	case p.isKeyword("if"):
		return p.parseIf(false)
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("loop"):
		return p.parseLoop()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("break"):
		return p.parseBreakContinue(true)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(false)
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("print"):
		return p.parsePrint()
	case p.isKeyword("printtype"):
		return p.parsePrintType()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseLet() ast.Node {
	pos := p.tok.pos
	p.advance() // "let"
	mutable := false
	if p.isKeyword("mut") {
		mutable = true
		p.advance()
	}
	name := p.expectIdent()
	typeID := ""
	if p.isPunct(":") {
		p.advance()
		typeID = p.parseTypeID()
	}
	p.expectPunct("=")
	expr := p.parseExpr()
	p.expectPunct(";")
	return &ast.LetBind{
		Base:    ast.Base{BeginPos: pos},
		Pattern: ast.Pattern{Kind: ast.PatVar, Name: name},
		TypeID:  typeID,
		Expr:    expr,
		Mutable: mutable,
	}
}

// parseIf parses "if cond { ... } [else if cond {...}]* [else {...}]",
// folded into one ast.If with a parallel Conds/Bodies slice (ast.If's own
// shape), rather than a right-nested chain of single-arm
// Ifs.
func (p *parser) parseIf(isExpr bool) ast.Node {
	pos := p.tok.pos
	n := &ast.If{Base: ast.Base{BeginPos: pos}, IsExpr: isExpr}
	for {
		p.expectKeyword("if")
		cond := p.parseExpr()
		body := p.parseBlock()
		n.Conds = append(n.Conds, cond)
		n.Bodies = append(n.Bodies, body)
		if !p.isKeyword("else") {
			return n
		}
		p.advance() // "else"
		if p.isKeyword("if") {
			continue
		}
		n.Else = p.parseBlock()
		return n
	}
}

func (p *parser) parseWhile() ast.Node {
	pos := p.tok.pos
	p.advance()
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{Base: ast.Base{BeginPos: pos}, Cond: cond, Body: body}
}

func (p *parser) parseLoop() ast.Node {
	pos := p.tok.pos
	p.advance()
	body := p.parseBlock()
	return &ast.Loop{Base: ast.Base{BeginPos: pos}, Body: body}
}

func (p *parser) parseFor() ast.Node {
	pos := p.tok.pos
	p.advance()
	v := p.expectIdent()
	p.expectKeyword("in")
	list := p.parseExpr()
	body := p.parseBlock()
	return &ast.For{Base: ast.Base{BeginPos: pos}, Var: v, List: list, Body: body}
}

func (p *parser) parseBreakContinue(isBreak bool) ast.Node {
	pos := p.tok.pos
	p.advance()
	p.expectPunct(";")
	if isBreak {
		return &ast.Break{Base: ast.Base{BeginPos: pos}}
	}
	return &ast.Continue{Base: ast.Base{BeginPos: pos}}
}

func (p *parser) parseReturn() ast.Node {
	pos := p.tok.pos
	p.advance()
	if p.isPunct(";") {
		p.advance()
		return &ast.Ret{Base: ast.Base{BeginPos: pos}}
	}
	expr := p.parseExpr()
	p.expectPunct(";")
	return &ast.Ret{Base: ast.Base{BeginPos: pos}, Expr: expr}
}

func (p *parser) parsePrint() ast.Node {
	pos := p.tok.pos
	p.advance()
	expr := p.parseExpr()
	p.expectPunct(";")
	return &ast.DbgPrint{Base: ast.Base{BeginPos: pos}, Expr: expr}
}

func (p *parser) parsePrintType() ast.Node {
	pos := p.tok.pos
	p.advance()
	typeID := p.parseTypeID()
	p.expectPunct(";")
	return &ast.DbgPrintType{Base: ast.Base{BeginPos: pos}, TypeID: typeID}
}

var assignOps = map[string]ast.AssignOp{
	"=": ast.AssignPlain, "+=": ast.AssignAdd, "-=": ast.AssignSub,
	"*=": ast.AssignMul, "/=": ast.AssignDiv, "%=": ast.AssignMod,
	"&=": ast.AssignBitAnd, "|=": ast.AssignBitOr, "^=": ast.AssignBitXor,
}

// parseExprOrAssignStmt disambiguates "lhs = expr;"/"lhs op= expr;" from a
// bare expression statement by parsing one full expression first, then
// checking whether an assignment operator follows — the same approach
// gql's own expression-statement handling takes, since the CA grammar's
// lvalue forms (bare name, *p, a[i], s.f) are themselves valid expressions.
func (p *parser) parseExprOrAssignStmt() ast.Node {
	pos := p.tok.pos
	lhs := p.parseExpr()
	if p.tok.kind == tokPunct {
		if op, ok := assignOps[p.tok.text]; ok {
			p.advance()
			rhs := p.parseExpr()
			p.expectPunct(";")
			return &ast.Assign{Base: ast.Base{BeginPos: pos}, LHS: toLValue(lhs), Op: op, Expr: rhs}
		}
	}
	p.expectPunct(";")
	return lhs
}

// toLValue rewrites the "value" postfix forms parsePostfix builds
// (ArrayItemRight, StructFieldOpRight) into the "address" forms
// package lower's emitLValueAddr recognizes as assignment targets. A bare
// Id or an OpDeref Expr already satisfies emitLValueAddr directly.
func toLValue(n ast.Node) ast.Node {
	switch e := n.(type) {
	case *ast.ArrayItemRight:
		return &ast.ArrayItemLeft{Base: e.Base, Array: e.Array, Index: e.Index}
	case *ast.StructFieldOpRight:
		return &ast.StructFieldOpLeft{Base: e.Base, Parent: e.Parent, Field: e.Field, Arrow: e.Arrow}
	default:
		return n
	}
}

// ---- expressions (precedence climbing) ----

type binLevel struct {
	ops map[string]ast.Op
}

var precedence = []binLevel{
	{ops: map[string]ast.Op{"||": ast.OpOrOr}},
	{ops: map[string]ast.Op{"&&": ast.OpAndAnd}},
	{ops: map[string]ast.Op{"==": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe}},
	{ops: map[string]ast.Op{"|": ast.OpBitOr}},
	{ops: map[string]ast.Op{"^": ast.OpBitXor}},
	{ops: map[string]ast.Op{"&": ast.OpBitAnd}},
	{ops: map[string]ast.Op{"<<": ast.OpShl, ">>": ast.OpShr}},
	{ops: map[string]ast.Op{"+": ast.OpAdd, "-": ast.OpSub}},
	{ops: map[string]ast.Op{"*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod}},
}

func (p *parser) parseExpr() ast.Node { return p.parseBin(0) }

func (p *parser) parseBin(level int) ast.Node {
	if level >= len(precedence) {
		return p.parseUnary()
	}
	lhs := p.parseBin(level + 1)
	for p.tok.kind == tokPunct {
		op, ok := precedence[level].ops[p.tok.text]
		if !ok {
			break
		}
		pos := p.tok.pos
		p.advance()
		rhs := p.parseBin(level + 1)
		lhs = ast.NewExpr(pos, op, lhs, rhs)
	}
	return lhs
}

func (p *parser) parseUnary() ast.Node {
	pos := p.tok.pos
	switch {
	case p.isPunct("-"):
		p.advance()
		return ast.NewExpr(pos, ast.OpNeg, p.parseUnary())
	case p.isPunct("!"):
		p.advance()
		return ast.NewExpr(pos, ast.OpNot, p.parseUnary())
	case p.isPunct("&"):
		p.advance()
		return ast.NewExpr(pos, ast.OpAddrOf, p.parseUnary())
	case p.isPunct("*"):
		p.advance()
		return ast.NewExpr(pos, ast.OpDeref, p.parseUnary())
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePostfix handles call/index/field suffixes chained onto a primary
// expression: f(args), a[i], s.field, recv.method(args).
func (p *parser) parsePostfix(n ast.Node) ast.Node {
	for {
		switch {
		case p.isPunct("("):
			id, ok := n.(*ast.Id)
			if !ok {
				p.fail("only a bare name may be called")
			}
			call := p.parseCallArgs(id.Name, nil)
			n = call
		case p.isPunct("["):
			pos := p.tok.pos
			p.advance()
			idx := p.parseExpr()
			p.expectPunct("]")
			n = &ast.ArrayItemRight{Base: ast.Base{BeginPos: pos}, Array: n, Index: idx}
		case p.isPunct(".") && p.lex.peekTok().kind == tokIdent:
			p.advance()
			field := p.expectIdent()
			if p.isPunct("(") {
				recv := &ast.MethodRecv{Base: ast.Base{BeginPos: n.Begin()}, Recv: n}
				n = p.parseCallArgs(field, recv)
				continue
			}
			n = &ast.StructFieldOpRight{Base: ast.Base{BeginPos: n.Begin()}, Parent: n, Field: field}
		default:
			return n
		}
	}
}

// parseCallArgs parses "(args)" and builds the OpFnCall Expr, starting the
// operand list with recv (an *ast.MethodRecv) when this call came from
// "recv.method(...)" rather than a bare "name(...)".
func (p *parser) parseCallArgs(calleeName string, recv ast.Node) *ast.Expr {
	pos := p.tok.pos
	p.advance() // "("
	var operands []ast.Node
	if recv != nil {
		operands = append(operands, recv)
	}
	first := len(operands)
	for !p.isPunct(")") {
		if len(operands) > first {
			p.expectPunct(",")
		}
		operands = append(operands, p.parseExpr())
	}
	p.expectPunct(")")
	call := ast.NewExpr(pos, ast.OpFnCall, operands...)
	call.CalleeName = calleeName
	return call
}

func (p *parser) parsePrimary() ast.Node {
	pos := p.tok.pos
	switch {
	case p.isPunct("("):
		p.advance()
		n := p.parseExpr()
		p.expectPunct(")")
		return n
	case p.tok.kind == tokInt:
		text := p.tok.text
		p.advance()
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			p.fail("invalid integer literal %q: %v", text, err)
		}
		return &ast.Literal{Base: ast.Base{BeginPos: pos}, Kind: ast.LitI64, Text: text, I64: v}
	case p.tok.kind == tokFloat:
		text := p.tok.text
		p.advance()
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.fail("invalid float literal %q: %v", text, err)
		}
		return &ast.Literal{Base: ast.Base{BeginPos: pos}, Kind: ast.LitF64, Text: text, F64: v}
	case p.tok.kind == tokString:
		text := p.tok.text
		p.advance()
		s, err := strconv.Unquote(text)
		if err != nil {
			s = strings.Trim(text, `"`)
		}
		return &ast.Literal{Base: ast.Base{BeginPos: pos}, Kind: ast.LitCString, Text: text, Str: s}
	case p.isKeyword("true"), p.isKeyword("false"):
		v := int64(0)
		if p.tok.text == "true" {
			v = 1
		}
		text := p.tok.text
		p.advance()
		return &ast.Literal{Base: ast.Base{BeginPos: pos}, Kind: ast.LitBool, Text: text, I64: v}
	case p.tok.kind == tokIdent:
		name := p.expectIdent()
		return &ast.Id{Base: ast.Base{BeginPos: pos}, Name: name, Kind: ast.IDVariable}
	default:
		p.fail("unexpected token %q", p.tok.text)
		return nil
	}
}
