// Package frontend is a minimal hand-rolled lexer/parser that turns CA
// source text into the ast.Program the lowering driver consumes. Grounded
// on gql/lex.go's use of text/scanner for tokenization, but a plain
// recursive-descent parser rather than a goyacc-generated one: the full CA
// grammar (structs, traits, generics, patterns, ranges) is intentionally
// out of scope, so this front end covers only the statement/expression
// subset needed to drive the core end to end — functions, let/assign,
// control flow, and arithmetic/call expressions over primitive types.
package frontend

import (
	"io"
	"text/scanner"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokChar
	tokPunct // operators and punctuation, Text holds the exact spelling
)

type token struct {
	kind tokKind
	text string
	pos  scanner.Position
}

// lexer wraps text/scanner.Scanner with lookahead-by-one, the same
// building block gql/lex.go uses (lex.sc.Scan()/lex.sc.Pos()) before its
// goyacc glue takes over; here the recursive-descent parser consumes
// tokens directly instead of handing them to a generated state machine.
type lexer struct {
	sc   scanner.Scanner
	peek *token
}

var punctSet = []string{
	"->", "..", "::", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".",
}

func newLexer(filename string, src []byte) *lexer {
	l := &lexer{}
	l.sc.Init(&byteReader{b: src})
	l.sc.Filename = filename
	l.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	return l
}

// byteReader adapts a []byte to io.Reader without pulling in bytes.Reader
// just for this one call site. Needs a pointer receiver: Read must mutate
// the same backing struct scanner.Scanner holds across repeated calls, not
// a fresh copy of it each time.
type byteReader struct{ b []byte }

func (r *byteReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}

func (l *lexer) rawNext() token {
	tok := l.sc.Scan()
	pos := l.sc.Pos()
	switch tok {
	case scanner.EOF:
		return token{kind: tokEOF, pos: pos}
	case scanner.Ident:
		return token{kind: tokIdent, text: l.sc.TokenText(), pos: pos}
	case scanner.Int:
		return token{kind: tokInt, text: l.sc.TokenText(), pos: pos}
	case scanner.Float:
		return token{kind: tokFloat, text: l.sc.TokenText(), pos: pos}
	case scanner.String:
		return token{kind: tokString, text: l.sc.TokenText(), pos: pos}
	case scanner.Char:
		return token{kind: tokChar, text: l.sc.TokenText(), pos: pos}
	default:
		// A single rune. Check whether it combines with the very next rune
		// into one of the two-character operators this lexer knows
		// (scanner.Scanner.Peek/Next let us look one rune further without
		// another full Scan()); every multi-rune spelling in punctSet is
		// exactly two characters, so one lookahead rune suffices.
		first := string(tok)
		if r := l.sc.Peek(); r != scanner.EOF {
			two := first + string(r)
			if isKnownPunct(two) {
				l.sc.Next()
				return token{kind: tokPunct, text: two, pos: pos}
			}
		}
		return token{kind: tokPunct, text: first, pos: pos}
	}
}

func isKnownPunct(s string) bool {
	for _, p := range punctSet {
		if p == s {
			return true
		}
	}
	return false
}

func (l *lexer) peekTok() token {
	if l.peek == nil {
		t := l.rawNext()
		l.peek = &t
	}
	return *l.peek
}

func (l *lexer) next() token {
	t := l.peekTok()
	l.peek = nil
	return t
}
